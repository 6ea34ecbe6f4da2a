package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"irma-verse/config"
	"irma-verse/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerReplacesClient(t *testing.T) {
	m := NewManager()
	first := NewClient("u1", nil)
	second := NewClient("u1", nil)

	m.AddClient(first)
	m.AddClient(second)
	assert.True(t, m.IsOnline("u1"))
	assert.Equal(t, 1, m.OnlineCount())

	_, open := <-first.Send
	assert.False(t, open, "replaced client's channel is closed")

	assert.False(t, m.RemoveClient(first), "stale client must not evict the new one")
	assert.True(t, m.IsOnline("u1"))

	assert.True(t, m.RemoveClient(second))
	assert.False(t, m.IsOnline("u1"))
}

func TestManagerNotifyUser(t *testing.T) {
	m := NewManager()
	c := NewClient("u1", nil)
	m.AddClient(c)

	m.NotifyUser("u1", map[string]string{"type": "friend_request"})
	select {
	case msg := <-c.Send:
		assert.JSONEq(t, `{"type":"friend_request"}`, string(msg))
	default:
		t.Fatal("expected a queued message")
	}

	assert.False(t, m.SendToUser("nobody", []byte("x")))
	m.NotifyUser("nobody", map[string]string{"type": "ignored"})
}

func newTestServer(t *testing.T) (*httptest.Server, *Manager, *jwt.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc := jwt.NewJWTService(config.JWTConfig{
		Secret:     "websocket-test-secret-key-0123456789",
		ExpireTime: time.Hour,
		Issuer:     "irma-verse",
		CookieName: "irma_session",
	})
	manager := NewManager()
	h := NewHandler(manager, jwtSvc, config.WebSocketConfig{
		PingInterval: time.Second,
		ReadTimeout:  5 * time.Second,
	})

	r := gin.New()
	r.GET("/ws", h.Serve)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, manager, jwtSvc
}

func TestServeRejectsMissingToken(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeDeliversNotifications(t *testing.T) {
	srv, manager, jwtSvc := newTestServer(t)

	token, err := jwtSvc.GenerateToken("user-1", nil)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return manager.IsOnline("user-1") }, 2*time.Second, 10*time.Millisecond)

	manager.NotifyUser("user-1", map[string]string{"type": "friend_accepted"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"friend_accepted"}`, string(msg))

	conn.Close()
	assert.Eventually(t, func() bool { return !manager.IsOnline("user-1") }, 2*time.Second, 10*time.Millisecond)
}
