package model

import "encoding/json"

// Citation is a source passage returned alongside an answer. Title, URL and
// Content are interpreted; every other field the upstream sends is kept in
// Extra and written back unchanged when the citation is re-encoded.
type Citation struct {
	Title    string
	URL      string
	Content  string
	FilePath string
	ChunkID  string
	Extra    map[string]json.RawMessage
}

// Answer is the result of one successful submission. Text and Citations are
// always replaced together.
type Answer struct {
	Text      string
	Citations []Citation
}

// IsEmpty reports whether no answer text is present. Citations are only
// meaningful when the answer is non-empty.
func (a Answer) IsEmpty() bool {
	return a.Text == ""
}

// RawResponse is the decoded chat-completions body before any cleanup.
// Pointer fields distinguish "absent" from "empty" so the transformer can
// report which part of the shape was missing.
type RawResponse struct {
	Choices []RawChoice `json:"choices"`
}

// RawChoice is one entry of the upstream choices array.
type RawChoice struct {
	Message *RawMessage `json:"message"`
}

// RawMessage is the assistant message of a choice.
type RawMessage struct {
	Role    string      `json:"role,omitempty"`
	Content string      `json:"content"`
	Context *RawContext `json:"context,omitempty"`
}

// RawContext carries retrieval data attached by the "on your data" extension.
type RawContext struct {
	Citations []Citation `json:"citations,omitempty"`
}
