package route_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"bdayinvite/src-server/birthday"
	"bdayinvite/src-server/model"
	"bdayinvite/src-server/route"
	"bdayinvite/src-server/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

var now = time.Unix(1_700_000_000, 0).UTC()

type testServer struct {
	as     *utils.AppState
	server *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	bundb := bun.NewDB(db, sqlitedialect.New())
	t.Cleanup(func() { bundb.Close() })
	require.NoError(t, model.CreateSchema(context.Background(), bundb))

	config, err := utils.LoadConfig(func(key string) string {
		return map[string]string{
			"DISCORD_APP_TOKEN": "token",
			"DISCORD_CLIENT_ID": "1",
			"TIMEZONE":          "UTC",
			"DEV":               "true",
		}[key]
	})
	require.NoError(t, err)

	as := utils.NewHeadlessAppState(config, bundb)
	as.Now = func() time.Time { return now }

	muxer := http.NewServeMux()
	route.Auth(muxer, as)
	route.Birthday(muxer, as)
	route.Ical(muxer, as)
	server := httptest.NewServer(muxer)
	t.Cleanup(server.Close)

	return &testServer{as: as, server: server}
}

// session inserts a live session for userID and returns its secret.
func (ts *testServer) session(t *testing.T, userID string) string {
	t.Helper()
	secret := "secret-" + userID
	_, err := ts.as.BunDB.NewInsert().
		Model(&model.Session{
			Secret:           secret,
			Purpose:          model.SESSION_MODEL_PURPOSE_SESSION,
			UserID:           userID,
			ChannelID:        "channel",
			CreatedAtUnixUTC: now.Unix(),
		}).
		Exec(context.Background())
	require.NoError(t, err)
	return secret
}

func (ts *testServer) do(t *testing.T, method, path, secret, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.server.URL+path, reader)
	require.NoError(t, err)
	if secret != "" {
		req.Header.Set("Authorization", "Bearer "+secret)
	}
	resp, err := ts.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respBody
}

func decodeState(t *testing.T, body []byte) birthday.State {
	t.Helper()
	var state birthday.State
	require.NoError(t, json.Unmarshal(body, &state), string(body))
	return state
}

func decodeError(t *testing.T, body []byte) route.ErrorRespBody {
	t.Helper()
	var errBody route.ErrorRespBody
	require.NoError(t, json.Unmarshal(body, &errBody), string(body))
	return errBody
}

func TestAuthMiddleware(t *testing.T) {
	ts := newTestServer(t)

	status, _ := ts.do(t, http.MethodGet, "/birthday/mine", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = ts.do(t, http.MethodGet, "/birthday/mine", "made-up", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	secret := ts.session(t, "alice")
	status, body := ts.do(t, http.MethodGet, "/birthday/mine", secret, "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(body))

	// the session outlives its expiry
	ts.as.Now = func() time.Time { return now.Add(ts.as.Config.GetSessionExpire() + time.Second) }
	status, body = ts.do(t, http.MethodGet, "/birthday/mine", secret, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Session expired", decodeError(t, body).Message)
	exists, err := ts.as.BunDB.NewSelect().
		Model((*model.Session)(nil)).
		Where("secret = ?", secret).
		Exists(context.Background())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLoginFlow(t *testing.T) {
	ts := newTestServer(t)
	insertTempKey := func(key string, createdAt time.Time) {
		_, err := ts.as.BunDB.NewInsert().
			Model(&model.Session{
				Secret:           key,
				Purpose:          model.SESSION_MODEL_PURPOSE_TEMP,
				UserID:           "alice",
				ChannelID:        "channel",
				CreatedAtUnixUTC: createdAt.Unix(),
			}).
			Exec(context.Background())
		require.NoError(t, err)
	}
	insertTempKey("fresh", now)
	insertTempKey("stale", now.Add(-route.TempKeyLifetime-time.Second))

	status, _ := ts.do(t, http.MethodPost, "/auth", "", `{"tempKey":""}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.do(t, http.MethodPost, "/auth", "", `{"tempKey":"stale"}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := ts.do(t, http.MethodPost, "/auth", "", `{"tempKey":"fresh"}`)
	require.Equal(t, http.StatusOK, status, string(body))
	var authResp struct {
		SessionSecret string `json:"sessionSecret"`
	}
	require.NoError(t, json.Unmarshal(body, &authResp))
	require.NotEmpty(t, authResp.SessionSecret)

	// the temp key is single use
	status, _ = ts.do(t, http.MethodPost, "/auth", "", `{"tempKey":"fresh"}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	// a temp key is not a session
	status, _ = ts.do(t, http.MethodGet, "/birthday/mine", "stale", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = ts.do(t, http.MethodGet, "/birthday/mine", authResp.SessionSecret, "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = ts.do(t, http.MethodDelete, "/auth", authResp.SessionSecret, "")
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = ts.do(t, http.MethodGet, "/birthday/mine", authResp.SessionSecret, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestBirthdayAPI(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.session(t, "alice")
	bob := ts.session(t, "bob")

	t.Run("create", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/birthday", alice, `{"eventName":" Party ","eventDate":1700003600}`)
		require.Equal(t, http.StatusCreated, status, string(body))
		state := decodeState(t, body)
		assert.Equal(t, birthday.Identity("alice"), state.Creator)
		assert.Equal(t, "Party", state.EventName)
		assert.Equal(t, int64(1_700_003_600), state.EventDate)
		assert.NotNil(t, state.RSVPs)
	})

	t.Run("create rejects", func(t *testing.T) {
		for _, tc := range []struct {
			body   string
			status int
			code   birthday.Code
		}{
			{`{"eventName":"Party","eventDate":1700003600}`, http.StatusConflict, route.CodeEventExists},
			{`{"eventName":"","eventDate":1700003600}`, http.StatusBadRequest, birthday.CodeInvalidEventName},
			{`{"eventName":"Old","eventDate":1700000000}`, http.StatusBadRequest, birthday.CodePastDateNotAllowed},
			{`{"eventName":"Vague","date":"qwerty zxcv"}`, http.StatusBadRequest, birthday.CodeInvalidDate},
		} {
			status, body := ts.do(t, http.MethodPost, "/birthday", alice, tc.body)
			assert.Equal(t, tc.status, status, tc.body)
			assert.Equal(t, tc.code, decodeError(t, body).Code, tc.body)
		}
		status, _ := ts.do(t, http.MethodPost, "/birthday", alice, `not json`)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("create from a human date", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/birthday", bob, `{"eventName":"Picnic","date":"2030-01-02 15:04"}`)
		require.Equal(t, http.StatusCreated, status, string(body))
		assert.Equal(t, time.Date(2030, 1, 2, 15, 4, 0, 0, time.UTC).Unix(), decodeState(t, body).EventDate)
	})

	t.Run("vote", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/birthday/alice/Party/confirm", bob, "")
		require.Equal(t, http.StatusOK, status, string(body))
		state := decodeState(t, body)
		assert.Equal(t, uint32(1), state.ComingCount)

		status, body = ts.do(t, http.MethodPost, "/birthday/alice/Party/decline", bob, "")
		require.Equal(t, http.StatusOK, status, string(body))
		state = decodeState(t, body)
		assert.Equal(t, uint32(0), state.ComingCount)
		assert.Equal(t, uint32(1), state.BusyCount)
		assert.Equal(t, []birthday.RSVP{{InvitedPerson: "bob", IsComing: false}}, state.RSVPs)
	})

	t.Run("comments", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/birthday/alice/Party/comments", bob, `{"content":"Excited!"}`)
		require.Equal(t, http.StatusCreated, status, string(body))
		assert.Equal(t, []birthday.Comment{{CommentAuthor: "bob", CommentID: 0, Content: "Excited!"}}, decodeState(t, body).Comments)

		status, body = ts.do(t, http.MethodPost, "/birthday/alice/Party/comments", bob, `{"content":"   "}`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, birthday.CodeInvalidComment, decodeError(t, body).Code)

		status, body = ts.do(t, http.MethodDelete, "/birthday/alice/Party/comments/0", alice, "")
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, birthday.CodeUnauthorized, decodeError(t, body).Code)

		status, _ = ts.do(t, http.MethodDelete, "/birthday/alice/Party/comments/9", bob, "")
		assert.Equal(t, http.StatusNotFound, status)
		status, _ = ts.do(t, http.MethodDelete, "/birthday/alice/Party/comments/-1", bob, "")
		assert.Equal(t, http.StatusNotFound, status)

		status, body = ts.do(t, http.MethodDelete, "/birthday/alice/Party/comments/0", bob, "")
		require.Equal(t, http.StatusOK, status, string(body))
		assert.Empty(t, decodeState(t, body).Comments)
	})

	t.Run("capacity", func(t *testing.T) {
		for _, guest := range []string{"g1", "g2", "g3", "g4"} {
			status, body := ts.do(t, http.MethodPost, "/birthday/alice/Party/confirm", ts.session(t, guest), "")
			require.Equal(t, http.StatusOK, status, string(body))
		}
		status, body := ts.do(t, http.MethodPost, "/birthday/alice/Party/confirm", ts.session(t, "g5"), "")
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, birthday.CodeTooManyRSVPs, decodeError(t, body).Code)
	})

	t.Run("get and list", func(t *testing.T) {
		status, body := ts.do(t, http.MethodGet, "/birthday/alice/Party", bob, "")
		require.Equal(t, http.StatusOK, status)
		state := decodeState(t, body)
		assert.Len(t, state.RSVPs, 5)
		assert.Equal(t, uint32(4), state.ComingCount)
		assert.Equal(t, uint32(1), state.BusyCount)

		status, body = ts.do(t, http.MethodGet, "/birthday/alice/Nope", bob, "")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, birthday.CodeEventNotFound, decodeError(t, body).Code)

		status, body = ts.do(t, http.MethodGet, "/birthday/mine", alice, "")
		require.Equal(t, http.StatusOK, status)
		var states []birthday.State
		require.NoError(t, json.Unmarshal(body, &states))
		require.Len(t, states, 1)
		assert.Equal(t, "Party", states[0].EventName)
	})

	t.Run("passed", func(t *testing.T) {
		ts.as.Now = func() time.Time { return now.Add(2 * time.Hour) }
		defer func() { ts.as.Now = func() time.Time { return now } }()
		status, body := ts.do(t, http.MethodPost, "/birthday/alice/Party/decline", bob, "")
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, birthday.CodeEventPassed, decodeError(t, body).Code)
	})

	t.Run("ical", func(t *testing.T) {
		status, _ := ts.do(t, http.MethodPost, "/birthday/alice/Party/comments", bob, `{"content":"See you!"}`)
		require.Equal(t, http.StatusCreated, status)

		status, body := ts.do(t, http.MethodGet, "/ical/alice/Party", "", "")
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(body), "SUMMARY:Party\r\n")
		assert.Contains(t, string(body), "DTSTART:20231114T231320Z\r\n")
		assert.Contains(t, string(body), "PARTSTAT=DECLINED:urn:discord:bob\r\n")
		assert.Contains(t, string(body), "DTSTAMP:20231114T221320Z\r\n")
		assert.Contains(t, string(body), "DESCRIPTION:bob: See you!\r\n")

		status, _ = ts.do(t, http.MethodGet, "/ical/alice/Nope", "", "")
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestPathNameIsNormalised(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.session(t, "alice")

	// "e" followed by a combining acute accent, stored as the single rune
	decomposed := "Cafe\u0301"
	status, body := ts.do(t, http.MethodPost, "/birthday", alice, `{"eventName":"`+decomposed+`","eventDate":1700003600}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Equal(t, "Caf\u00e9", decodeState(t, body).EventName)

	for _, name := range []string{decomposed, "Caf\u00e9"} {
		status, body = ts.do(t, http.MethodGet, "/birthday/alice/"+url.PathEscape(name), alice, "")
		assert.Equal(t, http.StatusOK, status, string(body))
	}
	status, _ = ts.do(t, http.MethodPost, "/birthday/alice/"+url.PathEscape(decomposed)+"/confirm", ts.session(t, "bob"), "")
	assert.Equal(t, http.StatusOK, status)
}

func TestOversizedBodyRejected(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.session(t, "alice")
	status, _ := ts.do(t, http.MethodPost, "/birthday", alice, `{"eventName":"Party","eventDate":1700003600}`)
	require.Equal(t, http.StatusCreated, status)

	padding := strings.Repeat(" ", 8<<10)
	for _, tc := range []struct {
		method, path, secret, body string
	}{
		{http.MethodPost, "/birthday", alice, `{"eventName":"Other",` + padding + `"eventDate":1700003600}`},
		{http.MethodPost, "/birthday/alice/Party/comments", alice, `{"content":"hi",` + padding + `"x":1}`},
		{http.MethodPost, "/auth", "", `{"tempKey":"k",` + padding + `"x":1}`},
	} {
		status, _ := ts.do(t, tc.method, tc.path, tc.secret, tc.body)
		assert.Equal(t, http.StatusBadRequest, status, tc.path)
	}

	// nothing was written
	status, body := ts.do(t, http.MethodGet, "/birthday/alice/Party", alice, "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decodeState(t, body).Comments)
	status, _ = ts.do(t, http.MethodGet, "/birthday/alice/Other", alice, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStatusOf(t *testing.T) {
	for code, status := range map[birthday.Code]int{
		birthday.CodeInvalidEventName:   http.StatusBadRequest,
		birthday.CodePastDateNotAllowed: http.StatusBadRequest,
		birthday.CodeInvalidComment:     http.StatusBadRequest,
		birthday.CodeInvalidDate:        http.StatusBadRequest,
		birthday.CodeUnauthorized:       http.StatusForbidden,
		birthday.CodeEventNotFound:      http.StatusNotFound,
		birthday.CodeCommentNotFound:    http.StatusNotFound,
		birthday.CodeEventPassed:        http.StatusConflict,
		birthday.CodeTooManyRSVPs:       http.StatusConflict,
		birthday.CodeTooManyComments:    http.StatusConflict,
		route.CodeEventExists:           http.StatusConflict,
		birthday.Code("SOMETHING_ELSE"): http.StatusInternalServerError,
	} {
		assert.Equal(t, status, route.StatusOf(code), code)
	}
}
