package httphandler

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/ericfisherdev/oncoassist/internal/domain/model"
)

// requireJSON rejects requests whose body is not declared as application/json.
// Browsers cannot send that content type cross-origin without a preflight.
// It writes a 415 and returns false on failure.
func requireJSON(w http.ResponseWriter, r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		writeError(w, http.StatusUnsupportedMediaType, "content type must be application/json")
		return false
	}
	return true
}

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// AskRequest is the body of POST /api/v1/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the JSON representation of an answer. Citations keep every
// field the upstream sent, with content cleaned.
type AskResponse struct {
	Answer    string           `json:"answer"`
	Citations []model.Citation `json:"citations"`
}

// CredentialRequest is the body of PUT /api/v1/credential.
type CredentialRequest struct {
	APIKey string `json:"api_key"`
}

// CredentialResponse reports whether a key is stored. The key itself is
// never returned.
type CredentialResponse struct {
	Configured bool `json:"configured"`
}

// HealthResponse is the JSON representation of a health check.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func toAskResponse(answer model.Answer) AskResponse {
	citations := answer.Citations
	if citations == nil {
		citations = []model.Citation{}
	}
	return AskResponse{Answer: answer.Text, Citations: citations}
}
