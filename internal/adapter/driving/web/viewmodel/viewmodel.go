// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// PageViewModel holds everything the question page renders.
type PageViewModel struct {
	Title     string
	CSRFToken string

	HasKey bool

	Question string
	Loading  bool

	HasAnswer  bool
	AnswerHTML string // sanitized HTML rendered from the answer's markdown
	Citations  []CitationViewModel

	Error  string
	Notice string
}

// CitationViewModel holds presentation-ready data for one citation line.
type CitationViewModel struct {
	Title   string
	URL     string
	Content string
}
