package model

import "regexp"

// junkSuffix matches the encoded-URL artifact the search indexer appends to
// chunk content: a newline, "aHR0" (base64 of "http"), then the rest of the
// line up to end of string. The line ends at any of \n, \r, U+2028 or U+2029,
// so a token line followed by a carriage return is left alone.
var junkSuffix = regexp.MustCompile(`\naHR0[^\n\r\x{2028}\x{2029}]+$`)

// CleanContent strips one trailing indexer artifact from citation content.
// Content without the artifact is returned unchanged.
func CleanContent(s string) string {
	return junkSuffix.ReplaceAllLiteralString(s, "")
}

// ExtractAnswer reads the answer and cleaned citations out of a raw response.
// Missing citations are not an error; a missing choice or message is.
func ExtractAnswer(raw *RawResponse) (Answer, error) {
	if raw == nil || len(raw.Choices) == 0 {
		return Answer{}, ErrMissingChoices
	}
	msg := raw.Choices[0].Message
	if msg == nil {
		return Answer{}, ErrMissingMessage
	}

	var rawCitations []Citation
	if msg.Context != nil {
		rawCitations = msg.Context.Citations
	}

	citations := make([]Citation, 0, len(rawCitations))
	for _, c := range rawCitations {
		c.Content = CleanContent(c.Content)
		citations = append(citations, c)
	}

	return Answer{Text: msg.Content, Citations: citations}, nil
}
