package route

import (
	"net/http"
	"strconv"

	"bdayinvite/src-server/birthday"
	"bdayinvite/src-server/utils"
)

// Birthday registers the JSON API. Every route needs a session, the caller
// is the session's user.
func Birthday(muxer *http.ServeMux, as *utils.AppState) {
	type CreateReqBody struct {
		EventName string `json:"eventName"`
		// unix seconds, or Date for anything ParseDate reads
		EventDate int64  `json:"eventDate"`
		Date      string `json:"date"`
	}
	type CommentReqBody struct {
		Content string `json:"content"`
	}

	// the creator's own events
	muxer.HandleFunc("GET /birthday/mine", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			caller, ok := callerFrom(w, r)
			if !ok {
				return
			}
			events, err := as.Store.ListByCreator(r.Context(), caller)
			if err != nil {
				writeError(w, err)
				return
			}
			states := make([]birthday.State, 0, len(events))
			for _, event := range events {
				states = append(states, event.State())
			}
			writeJSON(w, http.StatusOK, states)
		}))

	muxer.HandleFunc("POST /birthday", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			caller, ok := callerFrom(w, r)
			if !ok {
				return
			}
			var reqBody CreateReqBody
			if err := decodeBody(w, r, &reqBody); err != nil {
				writeMessage(w, http.StatusBadRequest, "Invalid request body")
				return
			}

			now := as.Now()
			eventDate := reqBody.EventDate
			if reqBody.Date != "" {
				parsed, err := utils.ParseDate(as.When, reqBody.Date, as.Config.GetLocation(), now)
				if err != nil {
					writeError(w, err)
					return
				}
				eventDate = parsed.Unix()
			}

			event, err := as.Store.Create(r.Context(), caller, utils.NormalizeText(reqBody.EventName), eventDate, now, "")
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, event.State())
		}))

	muxer.HandleFunc("GET /birthday/{creator}/{name}", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			event, err := as.Store.Get(r.Context(), keyFrom(r))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, event.State())
		}))

	muxer.HandleFunc("POST /birthday/{creator}/{name}/confirm", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			caller, ok := callerFrom(w, r)
			if !ok {
				return
			}
			event, err := as.Store.ConfirmAttendance(r.Context(), keyFrom(r), caller, as.Now())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, event.State())
		}))

	muxer.HandleFunc("POST /birthday/{creator}/{name}/decline", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			caller, ok := callerFrom(w, r)
			if !ok {
				return
			}
			event, err := as.Store.DeclineAttendance(r.Context(), keyFrom(r), caller, as.Now())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, event.State())
		}))

	muxer.HandleFunc("POST /birthday/{creator}/{name}/comments", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			caller, ok := callerFrom(w, r)
			if !ok {
				return
			}
			var reqBody CommentReqBody
			if err := decodeBody(w, r, &reqBody); err != nil {
				writeMessage(w, http.StatusBadRequest, "Invalid request body")
				return
			}
			event, err := as.Store.AddComment(r.Context(), keyFrom(r), caller, utils.NormalizeText(reqBody.Content))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, event.State())
		}))

	muxer.HandleFunc("DELETE /birthday/{creator}/{name}/comments/{id}", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			caller, ok := callerFrom(w, r)
			if !ok {
				return
			}
			commentID, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
			if err != nil {
				writeError(w, birthday.ErrCommentNotFound)
				return
			}
			event, err := as.Store.RemoveComment(r.Context(), keyFrom(r), caller, commentID)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, event.State())
		}))
}

// keyFrom normalises the name the same way it was stored on create.
func keyFrom(r *http.Request) birthday.Key {
	return birthday.Key{
		Creator:   birthday.Identity(r.PathValue("creator")),
		EventName: utils.NormalizeText(r.PathValue("name")),
	}
}

func callerFrom(w http.ResponseWriter, r *http.Request) (birthday.Identity, bool) {
	sessionModel, ok := sessionFrom(r)
	if !ok || sessionModel.UserID == "" {
		writeMessage(w, http.StatusInternalServerError, "Can't get session from middleware")
		return "", false
	}
	return birthday.Identity(sessionModel.UserID), true
}
