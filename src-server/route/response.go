package route

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bdayinvite/src-server/birthday"
	"bdayinvite/src-server/store"
)

// CodeEventExists is the error code of a duplicate create, the only failure
// decided by storage rather than the birthday package.
const CodeEventExists birthday.Code = "EVENT_EXISTS"

type ErrorRespBody struct {
	Code    birthday.Code `json:"code,omitempty"`
	Message string        `json:"message"`
}

// request bodies only carry a name, a date or a comment
const maxBodyBytes = 4 << 10

// decodeBody reads a JSON body of at most maxBodyBytes into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("can't write response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorRespBody{Message: message})
}

// StatusOf maps a failure code to an HTTP status.
func StatusOf(code birthday.Code) int {
	switch code {
	case birthday.CodeInvalidEventName,
		birthday.CodePastDateNotAllowed,
		birthday.CodeInvalidComment,
		birthday.CodeInvalidDate:
		return http.StatusBadRequest
	case birthday.CodeUnauthorized:
		return http.StatusForbidden
	case birthday.CodeEventNotFound,
		birthday.CodeCommentNotFound:
		return http.StatusNotFound
	case birthday.CodeEventPassed,
		birthday.CodeTooManyRSVPs,
		birthday.CodeTooManyComments,
		CodeEventExists:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError answers with the failure's code and message. Anything that is
// not a business rule is logged and hidden behind a 500.
func writeError(w http.ResponseWriter, err error) {
	var domainErr *birthday.Error
	switch {
	case errors.As(err, &domainErr):
		writeJSON(w, StatusOf(domainErr.Code), ErrorRespBody{
			Code:    domainErr.Code,
			Message: domainErr.Message,
		})
	case errors.Is(err, store.ErrEventExists):
		writeJSON(w, StatusOf(CodeEventExists), ErrorRespBody{
			Code:    CodeEventExists,
			Message: "Event already exists",
		})
	default:
		slog.Error("request failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}
