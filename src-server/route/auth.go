package route

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"bdayinvite/src-server/model"
	"bdayinvite/src-server/utils"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// how long a key from /login can be traded for a session
const TempKeyLifetime = 5 * time.Minute

var errTempKey = errors.New("invalid temp key")

func Auth(muxer *http.ServeMux, as *utils.AppState) {
	// logout
	muxer.HandleFunc("DELETE /auth", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			sessionModel, ok := sessionFrom(r)
			if !ok {
				writeMessage(w, http.StatusInternalServerError, "Can't get session from middleware")
				return
			}
			if _, err := as.BunDB.
				NewDelete().
				Model(sessionModel).
				WherePK().
				Exec(r.Context()); err != nil {
				writeMessage(w, http.StatusInternalServerError, "Can't delete session")
				slog.Error("can't delete session", "error", err)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     SessionSecretCookieName,
				Value:    "",
				Path:     "/",
				MaxAge:   -1,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			w.WriteHeader(http.StatusNoContent)
		}))

	type AuthReqBody struct {
		TempKey string `json:"tempKey"`
	}
	type AuthRespBody struct {
		SessionSecret string `json:"sessionSecret"`
	}

	// login, trade the one-time key from /login for a session
	muxer.HandleFunc("POST /auth", func(w http.ResponseWriter, r *http.Request) {
		var reqBody AuthReqBody
		if err := decodeBody(w, r, &reqBody); err != nil || reqBody.TempKey == "" {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		newSessionSecret := uuid.NewString()
		now := as.Now()
		expired := false
		if err := as.BunDB.RunInTx(r.Context(), &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
			tempKeySessionModel := new(model.Session)
			if err := tx.NewSelect().
				Model(tempKeySessionModel).
				Where("secret = ?", reqBody.TempKey).
				Where("purpose = ?", model.SESSION_MODEL_PURPOSE_TEMP).
				Scan(ctx); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return errTempKey
				}
				return fmt.Errorf("can't find temp key in DB: %w", err)
			}

			// one-time use
			if _, err := tx.NewDelete().
				Model(tempKeySessionModel).
				WherePK().
				Exec(ctx); err != nil {
				return fmt.Errorf("can't delete temp key in DB: %w", err)
			}
			if time.Unix(tempKeySessionModel.CreatedAtUnixUTC, 0).UTC().
				Add(TempKeyLifetime).Before(now) {
				expired = true
				return nil
			}

			if _, err := tx.NewInsert().
				Model(&model.Session{
					Secret:           newSessionSecret,
					Purpose:          model.SESSION_MODEL_PURPOSE_SESSION,
					UserID:           tempKeySessionModel.UserID,
					ChannelID:        tempKeySessionModel.ChannelID,
					CreatedAtUnixUTC: now.UTC().Unix(),
				}).
				Exec(ctx); err != nil {
				return fmt.Errorf("can't insert session model to DB: %w", err)
			}
			return nil
		}); err != nil {
			if errors.Is(err, errTempKey) {
				writeMessage(w, http.StatusUnauthorized, "Invalid or expired temp key")
				return
			}
			writeMessage(w, http.StatusInternalServerError, "Can't create session")
			slog.Error("can't create session", "error", err)
			return
		}
		if expired {
			writeMessage(w, http.StatusUnauthorized, "Invalid or expired temp key")
			return
		}

		if as.Config.GetDev() {
			writeJSON(w, http.StatusOK, AuthRespBody{SessionSecret: newSessionSecret})
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     SessionSecretCookieName,
			Value:    newSessionSecret,
			Path:     "/",
			MaxAge:   int(as.Config.GetSessionExpire().Seconds()),
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteNoneMode,
		})
		w.WriteHeader(http.StatusNoContent)
	})
}
