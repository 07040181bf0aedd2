package route

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bdayinvite/src-server/model"
	"bdayinvite/src-server/utils"
)

type SessionCtxKeyType string

const (
	SessionCtxKey           SessionCtxKeyType = "session"
	SessionSecretCookieName string            = "session-secret"
)

// sessionSecret reads the secret from the cookie, or from an
// "Authorization: Bearer" header for clients without cookies.
func sessionSecret(r *http.Request) string {
	if sessionCookie, err := r.Cookie(SessionSecretCookieName); err == nil {
		if secret := strings.TrimSpace(sessionCookie.Value); secret != "" {
			return secret
		}
	}
	if secret, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(secret)
	}
	return ""
}

func AuthMiddleware(as *utils.AppState, next func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		secret := sessionSecret(r)
		if secret == "" {
			writeMessage(w, http.StatusUnauthorized, "Session secret not found")
			return
		}

		startTimer := time.Now()
		sessionModel := new(model.Session)
		if err := as.BunDB.
			NewSelect().
			Model(sessionModel).
			Where("secret = ?", secret).
			Where("purpose = ?", model.SESSION_MODEL_PURPOSE_SESSION).
			Scan(r.Context()); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeMessage(w, http.StatusUnauthorized, "Session secret not found")
				return
			}
			writeMessage(w, http.StatusInternalServerError, "Can't check if session exists in DB")
			slog.Error("can't check if session exists in DB", "error", err)
			return
		}
		as.MetricChans.RecordDatabaseRead(time.Since(startTimer))

		if time.Unix(sessionModel.CreatedAtUnixUTC, 0).UTC().
			Add(as.Config.GetSessionExpire()).Before(as.Now()) {
			if _, err := as.BunDB.
				NewDelete().
				Model((*model.Session)(nil)).
				Where("secret = ?", secret).
				Exec(r.Context()); err != nil {
				writeMessage(w, http.StatusInternalServerError, "Can't delete session model in DB")
				slog.Error("can't delete session model in DB", "error", err)
				return
			}
			writeMessage(w, http.StatusUnauthorized, "Session expired")
			return
		}

		ctx := context.WithValue(r.Context(), SessionCtxKey, sessionModel)
		next(w, r.WithContext(ctx))
	}
}

// sessionFrom returns the session AuthMiddleware put into the context.
func sessionFrom(r *http.Request) (*model.Session, bool) {
	sessionModel, ok := r.Context().Value(SessionCtxKey).(*model.Session)
	return sessionModel, ok
}
