package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ericfisherdev/oncoassist/internal/adapter/driven/azure"
	"github.com/ericfisherdev/oncoassist/internal/application"
	"github.com/ericfisherdev/oncoassist/internal/domain/model"
)

func askCmd() *cobra.Command {
	var (
		apiKey  string
		plain   bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask one question and print the answer with its citations",
		Example: `  oncoassist ask "What are the early signs of breast cancer?"
  oncoassist ask --key "$AZURE_OPENAI_KEY" What is stage II treatment?`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			if verbose {
				logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
			}

			secret := apiKey
			if strings.TrimSpace(secret) == "" {
				_, store, closeDB, err := openCredentialStore(ctx)
				if err != nil {
					return err
				}
				defer closeDB()

				secret, _, err = store.Load(ctx)
				if err != nil {
					return err
				}
			}

			question := strings.Join(args, " ")
			svc := application.NewAskService(azure.NewClient(logger), nil, logger)
			answer, err := svc.Submit(ctx, question, secret)
			if errors.Is(err, application.ErrPreconditionSkip) {
				return skipReason(question, secret)
			}
			if err != nil {
				logger.Error("ask failed", "error", err)
				return errors.New(model.UserMessage(err))
			}

			out := cmd.OutOrStdout()
			render := !plain && isTerminal(out)
			_, err = io.WriteString(out, formatAnswer(answer, render))
			return err
		},
	}

	cmd.Flags().StringVar(&apiKey, "key", "", "API key to use instead of the stored one")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print raw markdown even on a terminal")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log the upstream exchange to stderr")
	return cmd
}

// skipReason explains which input was blank when a question was not sent.
func skipReason(question, secret string) error {
	if strings.TrimSpace(question) == "" {
		return errors.New("question is empty")
	}
	if strings.TrimSpace(secret) == "" {
		return errors.New("no API key stored: run `oncoassist key set` or pass --key")
	}
	return application.ErrPreconditionSkip
}

// formatAnswer lays out the answer followed by a numbered citation list.
// When render is true the markdown is styled for the terminal.
func formatAnswer(answer model.Answer, render bool) string {
	var b strings.Builder
	b.WriteString(answer.Text)
	b.WriteString("\n")

	if len(answer.Citations) > 0 {
		b.WriteString("\n**Citations:**\n\n")
		for i, c := range answer.Citations {
			fmt.Fprintf(&b, "%d. [%s](%s): %s\n", i+1, c.Title, c.URL, c.Content)
		}
	}

	if !render {
		return b.String()
	}
	return renderMarkdown(b.String())
}

// renderMarkdown styles markdown for the terminal, returning the input
// unchanged if the renderer cannot be built or fails.
func renderMarkdown(src string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return src
	}
	out, err := r.Render(src)
	if err != nil {
		return src
	}
	return out
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
