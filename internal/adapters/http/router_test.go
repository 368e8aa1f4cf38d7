package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/dkeye/Relay/internal/config"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/core/coretest"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *orch.Orchestrator) {
	t.Helper()
	cfg := &config.Config{Mode: "release", Secret: "test-secret", StaticPath: t.TempDir()}
	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewRoomManager(core.RoomOptions{}),
		Policy:   app.SimplePolicy{},
	}
	return SetupRouter(context.Background(), cfg, o, CookieIdentityProvider{}), o
}

func do(t *testing.T, r http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return serve(r, req)
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type errorBody struct {
	Error struct {
		Kind   core.ErrorKind `json:"kind"`
		Detail string         `json:"detail"`
	} `json:"error"`
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","connections":0}`, w.Body.String())
}

func TestRooms_CreateListGet(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/rooms", `{"name":"  general "}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[core.RoomInfo](t, w)
	assert.Equal(t, domain.RoomName("general"), created.Name)
	assert.NotEmpty(t, created.ID)
	assert.Zero(t, created.MemberCount)

	w = do(t, r, http.MethodPost, "/api/rooms", `{"name":"random"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodGet, "/api/rooms", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Rooms []core.RoomInfo `json:"rooms"`
	}](t, w)
	require.Len(t, list.Rooms, 2)
	assert.Equal(t, created, list.Rooms[0])
	assert.Equal(t, domain.RoomName("random"), list.Rooms[1].Name)

	w = do(t, r, http.MethodGet, "/api/rooms/"+string(created.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decode[core.RoomInfo](t, w))
}

func TestRooms_CreateRejectsBadNames(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing", body: `{}`},
		{name: "blank", body: `{"name":"   "}`},
		{name: "too long", body: `{"name":"` + strings.Repeat("n", app.MaxRoomNameLen+1) + `"}`},
		{name: "not json", body: `name=general`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, o := newTestRouter(t)
			w := do(t, r, http.MethodPost, "/api/rooms", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, core.KindInvalidArgument, decode[errorBody](t, w).Error.Kind)
			assert.Empty(t, o.Rooms.List())
		})
	}
}

func TestRooms_UnknownRoom(t *testing.T) {
	r, _ := newTestRouter(t)
	for _, path := range []string{"/api/rooms/nope", "/api/rooms/nope/members"} {
		w := do(t, r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		body := decode[errorBody](t, w)
		assert.Equal(t, core.KindRoomNotFound, body.Error.Kind)
		assert.Contains(t, body.Error.Detail, "nope")
	}
}

func TestRooms_Members(t *testing.T) {
	r, o := newTestRouter(t)
	room, err := o.Rooms.CreateRoom("general")
	require.NoError(t, err)
	path := "/api/rooms/" + string(room.Room().ID) + "/members"

	w := do(t, r, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"members":[]}`, w.Body.String())

	for _, name := range []string{"alice", "bob"} {
		identity, err := domain.NewIdentity(domain.IdentityID("id-"+name), name, "")
		require.NoError(t, err)
		room.AddMember(core.NewMemberSession(core.SessionID("sid-"+name), identity, &coretest.Recorder{}))
	}

	w = do(t, r, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"members":[{"id":"id-alice","display_name":"alice"},{"id":"id-bob","display_name":"bob"}]}`,
		w.Body.String())

	w = do(t, r, http.MethodGet, "/api/rooms/"+string(room.Room().ID), "")
	assert.Equal(t, 2, decode[core.RoomInfo](t, w).MemberCount)
}

func TestIdentity_CookieProfile(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/identity", "")
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[domain.Identity](t, w)
	assert.Equal(t, "guest", first.DisplayName)
	cookies := w.Result().Cookies()
	var token string
	for _, c := range cookies {
		if c.Name == clientTokenCookie {
			token = c.Value
		}
	}
	require.NotEmpty(t, token)
	assert.Equal(t, domain.IdentityID(token), first.ID)

	w = do(t, r, http.MethodPut, "/api/identity", `{"display_name":"  Alice ","avatar_ref":"https://example.com/a.png"}`, cookies...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[domain.Identity](t, w)
	assert.Equal(t, first.ID, updated.ID)
	assert.Equal(t, "Alice", updated.DisplayName)
	cookies = append(cookies, w.Result().Cookies()...)

	w = do(t, r, http.MethodGet, "/api/identity", "", cookies...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, updated, decode[domain.Identity](t, w))
}

func TestIdentity_RejectsInvalidProfile(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing display name", body: `{"avatar_ref":"x"}`},
		{name: "display name too long", body: `{"display_name":"` + strings.Repeat("x", domain.MaxDisplayNameLen+1) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRouter(t)
			w := do(t, r, http.MethodPut, "/api/identity", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, core.KindInvalidArgument, decode[errorBody](t, w).Error.Kind)
		})
	}
}

func TestClientTokenMiddleware_KeepsValidToken(t *testing.T) {
	r, _ := newTestRouter(t)
	const token = "0b6d3c1e-8f0a-4d51-9a47-2f1f6f8f1e11"

	w := do(t, r, http.MethodGet, "/api/identity", "", &http.Cookie{Name: clientTokenCookie, Value: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.IdentityID(token), decode[domain.Identity](t, w).ID)
	for _, c := range w.Result().Cookies() {
		assert.NotEqual(t, clientTokenCookie, c.Name, "a valid token is not reissued")
	}
}

func TestSignal_UpgradeIssuesClientToken(t *testing.T) {
	r, o := newTestRouter(t)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/signal"

	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	var token *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == clientTokenCookie {
			token = c
		}
	}
	require.NotNil(t, token, "handshake response sets the client token")
	require.Eventually(t, func() bool { return o.Registry.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
	sess, ok := o.Registry.GetSession(o.Registry.SessionIDs()[0])
	require.True(t, ok)
	assert.Equal(t, domain.IdentityID(token.Value), sess.Identity().ID)

	again, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Cookie": {token.Name + "=" + token.Value}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = again.Close() })
	for _, c := range resp.Cookies() {
		assert.NotEqual(t, clientTokenCookie, c.Name, "a returning client keeps its token")
	}
	require.Eventually(t, func() bool { return o.Registry.Count() == 2 }, 2*time.Second, 10*time.Millisecond)
	for _, sid := range o.Registry.SessionIDs() {
		sess, ok := o.Registry.GetSession(sid)
		require.True(t, ok)
		assert.Equal(t, domain.IdentityID(token.Value), sess.Identity().ID)
	}
}
