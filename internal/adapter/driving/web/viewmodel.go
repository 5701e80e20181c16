package web

import (
	vm "github.com/ericfisherdev/oncoassist/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/oncoassist/internal/domain/model"
)

const pageTitle = "Breast Cancer Decision Support"

// toPageViewModel converts the session state into the page view model.
// Citations are only shown alongside a non-empty answer.
func toPageViewModel(state model.AppState, csrf string) vm.PageViewModel {
	page := vm.PageViewModel{
		Title:     pageTitle,
		CSRFToken: csrf,
		HasKey:    state.HasCredential(),
		Question:  state.Question,
		Loading:   state.Loading,
		Error:     state.Error,
		Citations: []vm.CitationViewModel{},
	}

	if state.Answer.IsEmpty() {
		return page
	}

	page.HasAnswer = true
	page.AnswerHTML = RenderMarkdown(state.Answer.Text)
	for _, c := range state.Answer.Citations {
		page.Citations = append(page.Citations, vm.CitationViewModel{
			Title:   citationTitle(c),
			URL:     c.URL,
			Content: c.Content,
		})
	}
	return page
}

// citationTitle falls back to the file path, then the URL, for untitled chunks.
func citationTitle(c model.Citation) string {
	switch {
	case c.Title != "":
		return c.Title
	case c.FilePath != "":
		return c.FilePath
	default:
		return c.URL
	}
}
