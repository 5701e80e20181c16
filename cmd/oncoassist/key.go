package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func keyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the stored Azure OpenAI API key",
	}
	cmd.AddCommand(keySetCmd(), keyClearCmd(), keyShowCmd())
	return cmd
}

func keySetCmd() *cobra.Command {
	var value string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the API key (prompts without echo when --value is omitted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			secret := value
			if !cmd.Flags().Changed("value") {
				var err error
				secret, err = readSecret(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}

			_, store, closeDB, err := openCredentialStore(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := store.Save(ctx, secret); err != nil {
				return err
			}
			if strings.TrimSpace(secret) == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "API key cleared")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key saved")
			return nil
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "Key to store; an empty value clears it")
	return cmd
}

func keyClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			_, store, closeDB, err := openCredentialStore(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := store.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key cleared")
			return nil
		},
	}
}

func keyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Report whether an API key is stored (the key is never printed)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, store, closeDB, err := openCredentialStore(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			cred, err := store.Get(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cred == nil || strings.TrimSpace(cred.Value) == "" {
				fmt.Fprintf(out, "no API key stored in %s\n", cfg.DBPath)
				return nil
			}
			fmt.Fprintf(out, "API key stored in %s (updated %s, encrypted at rest: %t)\n",
				cfg.DBPath, cred.UpdatedAt.Format("2006-01-02 15:04:05"), cfg.EncryptsCredentials())
			return nil
		},
	}
}

// readSecret prompts on prompt and reads one line from in, without echo
// when in is a terminal.
func readSecret(in io.Reader, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "Azure OpenAI API key: ")

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read key: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read key: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
