package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"irma-verse/config"
	"irma-verse/internal/model"
	"irma-verse/internal/repository"
	"irma-verse/internal/service"
	"irma-verse/internal/testutil"
	dbPkg "irma-verse/pkg/db"
	"irma-verse/pkg/jwt"
	"irma-verse/pkg/sanitize"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type env struct {
	t      *testing.T
	db     *gorm.DB
	engine *gin.Engine
	jwt    *jwt.JWTService
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, sanitize.RegisterValidators())

	gdb := testutil.NewDB(t)
	jwtSvc := jwt.NewJWTService(config.JWTConfig{
		Secret:     "handler-test-secret-key-0123456789ab",
		ExpireTime: time.Hour,
		Issuer:     "irma-verse",
		CookieName: "irma_session",
	})
	users := repository.NewUserRepository(gdb)
	friendships := repository.NewFriendshipRepository(gdb)

	rt := &Router{
		JWT:     jwtSvc,
		Users:   NewUserHandler(service.NewUserService(users, jwtSvc), jwtSvc, nil),
		Friends: NewFriendHandler(service.NewFriendshipService(users, friendships, nil)),
		Members: NewMemberHandler(service.NewDirectoryService(users)),
		Chat:    NewChatHandler(service.NewChatService(users, nil)),
	}
	r := gin.New()
	rt.Register(r)
	return &env{t: t, db: gdb, engine: r, jwt: jwtSvc}
}

func (e *env) user(role string) (*model.User, string) {
	e.t.Helper()
	u := testutil.CreateUser(e.t, e.db, role)
	token, err := e.jwt.GenerateToken(u.ID, map[string]interface{}{"name": u.Name, "role": u.Role})
	require.NoError(e.t, err)
	return u, token
}

func (e *env) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(e.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestFriendRoutesRequireSession(t *testing.T) {
	e := newEnv(t)
	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/friends"},
		{http.MethodGet, "/api/friends"},
		{http.MethodDelete, "/api/friends"},
		{http.MethodPost, "/api/friends/accept"},
		{http.MethodPost, "/api/friends/reject"},
		{http.MethodGet, "/api/friends/list"},
		{http.MethodGet, "/api/friends/someone"},
		{http.MethodDelete, "/api/friends/someone"},
		{http.MethodGet, "/api/users/me"},
		{http.MethodGet, "/api/chat/threads"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w, body := e.do(rt.method, rt.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, http.StatusUnauthorized, body.Code)
			assert.Equal(t, "unauthorized", body.Message)
		})
	}

	w, _ := e.do(http.MethodGet, "/api/friends", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestFriendshipStatuses(t *testing.T) {
	e := newEnv(t)
	a, tokenA := e.user(model.RoleUser)
	b, _ := e.user(model.RoleUser)

	w, body := e.do(http.MethodPost, "/api/friends", tokenA, gin.H{"targetId": a.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cannot friend self", body.Message)

	w, _ = e.do(http.MethodPost, "/api/friends", tokenA, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = e.do(http.MethodPost, "/api/friends", tokenA, "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = e.do(http.MethodPost, "/api/friends", tokenA, gin.H{"targetId": "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "target user not found", body.Message)

	w, body = e.do(http.MethodPost, "/api/friends", tokenA, gin.H{"targetId": b.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, body.Code)
	var f model.Friendship
	require.NoError(t, json.Unmarshal(body.Data, &f))
	assert.Equal(t, model.FriendshipPending, f.Status)

	w, body = e.do(http.MethodPost, "/api/friends", tokenA, gin.H{"targetId": b.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "relationship already exists", body.Message)
}

func TestAcceptFlow(t *testing.T) {
	e := newEnv(t)
	a, tokenA := e.user(model.RoleUser)
	b, tokenB := e.user(model.RoleUser)

	w, _ := e.do(http.MethodPost, "/api/friends", tokenA, gin.H{"targetId": b.ID})
	require.Equal(t, http.StatusOK, w.Code)

	w, body := e.do(http.MethodGet, "/api/friends", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var incoming []model.UserSummary
	require.NoError(t, json.Unmarshal(body.Data, &incoming))
	require.Len(t, incoming, 1)
	assert.Equal(t, a.ID, incoming[0].ID)

	w, body = e.do(http.MethodPost, "/api/friends/accept", tokenA, gin.H{"requesterId": b.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "invalid request", body.Message)

	w, body = e.do(http.MethodPost, "/api/friends/accept", tokenB, gin.H{"requesterId": a.ID})
	require.Equal(t, http.StatusOK, w.Code)
	var f model.Friendship
	require.NoError(t, json.Unmarshal(body.Data, &f))
	assert.Equal(t, model.FriendshipAccepted, f.Status)

	w, _ = e.do(http.MethodPost, "/api/friends/accept", tokenB, gin.H{"requesterId": a.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = e.do(http.MethodGet, "/api/friends/list", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var friends []model.UserSummary
	require.NoError(t, json.Unmarshal(body.Data, &friends))
	require.Len(t, friends, 1)
	assert.Equal(t, b.ID, friends[0].ID)

	w, _ = e.do(http.MethodDelete, "/api/friends/"+b.ID, tokenA, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, body = e.do(http.MethodDelete, "/api/friends/"+b.ID, tokenA, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not friends", body.Message)
}

func TestWithdrawAndDecline(t *testing.T) {
	e := newEnv(t)
	a, tokenA := e.user(model.RoleUser)
	b, tokenB := e.user(model.RoleUser)

	w, _ := e.do(http.MethodPost, "/api/friends", tokenA, gin.H{"targetId": b.ID})
	require.Equal(t, http.StatusOK, w.Code)

	w, body := e.do(http.MethodDelete, "/api/friends", tokenA, gin.H{"targetId": a.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cannot reject self", body.Message)

	w, _ = e.do(http.MethodDelete, "/api/friends", tokenA, gin.H{"targetId": b.ID})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = e.do(http.MethodPost, "/api/friends", tokenA, gin.H{"targetId": b.ID})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = e.do(http.MethodPost, "/api/friends/reject", tokenB, gin.H{"targetId": a.ID})
	assert.Equal(t, http.StatusOK, w.Code)
	w, body = e.do(http.MethodPost, "/api/friends/reject", tokenB, gin.H{"targetId": a.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "no pending request", body.Message)
}

func TestMutualFriendsRoute(t *testing.T) {
	e := newEnv(t)
	a, tokenA := e.user(model.RoleUser)
	b, tokenB := e.user(model.RoleUser)
	c, tokenC := e.user(model.RoleUser)

	for _, req := range []struct {
		token, target string
	}{{tokenA, c.ID}, {tokenB, c.ID}} {
		w, _ := e.do(http.MethodPost, "/api/friends", req.token, gin.H{"targetId": req.target})
		require.Equal(t, http.StatusOK, w.Code)
	}
	for _, requester := range []string{a.ID, b.ID} {
		w, _ := e.do(http.MethodPost, "/api/friends/accept", tokenC, gin.H{"requesterId": requester})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, body := e.do(http.MethodGet, "/api/friends/"+b.ID, tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mutual []model.UserSummary
	require.NoError(t, json.Unmarshal(body.Data, &mutual))
	require.Len(t, mutual, 1)
	assert.Equal(t, c.ID, mutual[0].ID)

	w, _ = e.do(http.MethodGet, "/api/friends/"+a.ID, tokenA, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthFlow(t *testing.T) {
	e := newEnv(t)

	payload := gin.H{"name": "Rina", "email": "rina@irma.test", "password": "rahasia123"}
	w, body := e.do(http.MethodPost, "/api/auth/register", "", payload)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Result().Cookies())
	assert.NotContains(t, string(body.Data), "passwordHash")

	w, body = e.do(http.MethodPost, "/api/auth/register", "", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "email already registered", body.Message)

	w, _ = e.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "X", "email": "not-an-email", "password": "rahasia123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = e.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "rina@irma.test", "password": "salah"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", body.Message)

	w, body = e.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "rina@irma.test", "password": "rahasia123"})
	require.Equal(t, http.StatusOK, w.Code)
	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &auth))
	require.NotEmpty(t, auth.Token)

	w, _ = e.do(http.MethodPut, "/api/users/me", auth.Token, gin.H{"phone": "bukan-nomor"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = e.do(http.MethodPut, "/api/users/me", auth.Token, gin.H{"bio": "Anggota <b>IRMA</b>", "phone": "0812-3456-7890"})
	require.Equal(t, http.StatusOK, w.Code)
	var me model.User
	require.NoError(t, json.Unmarshal(body.Data, &me))
	assert.Equal(t, "Anggota IRMA", me.Bio)
	assert.Equal(t, "Rina", me.Name)

	w, _ = e.do(http.MethodPost, "/api/auth/logout", auth.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMembersAndExport(t *testing.T) {
	e := newEnv(t)
	testutil.CreateNamedUser(t, e.db, "Zulfa", model.RoleUser)
	testutil.CreateNamedUser(t, e.db, "Ustadz Hasan", model.RoleInstructor)
	_, adminToken := e.user(model.RoleAdmin)
	_, userToken := e.user(model.RoleUser)

	w, body := e.do(http.MethodGet, "/api/members", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var members []model.UserSummary
	require.NoError(t, json.Unmarshal(body.Data, &members))
	assert.Len(t, members, 3)
	for _, m := range members {
		assert.NotEqual(t, model.RoleInstructor, m.Role)
	}

	w, body = e.do(http.MethodGet, "/api/instructors", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var instructors []model.UserSummary
	require.NoError(t, json.Unmarshal(body.Data, &instructors))
	require.Len(t, instructors, 1)

	w, _ = e.do(http.MethodGet, "/api/members/export", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = e.do(http.MethodGet, "/api/members/export", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.NotZero(t, w.Body.Len())
}

func TestChatRoutes(t *testing.T) {
	e := newEnv(t)
	instructor := testutil.CreateNamedUser(t, e.db, "Ustadz Ahmad Zaki", model.RoleInstructor)
	_, token := e.user(model.RoleUser)

	w, body := e.do(http.MethodGet, "/api/chat/threads", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view service.ThreadsView
	require.NoError(t, json.Unmarshal(body.Data, &view))
	require.Len(t, view.Threads, 1)
	assert.Equal(t, instructor.ID, view.SelectedID)

	w, _ = e.do(http.MethodPost, "/api/chat/threads/"+instructor.ID+"/messages", token, gin.H{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = e.do(http.MethodPost, "/api/chat/threads/ghost/messages", token, gin.H{"text": "halo"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = e.do(http.MethodPost, "/api/chat/threads/"+instructor.ID+"/messages", token, gin.H{"text": "halo ustadz"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = e.do(http.MethodPost, "/api/chat/threads/ghost/select", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = e.do(http.MethodPost, "/api/chat/reset", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(body.Data, &view))
	assert.Empty(t, view.Threads[0].Messages)
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	prev := dbPkg.DB
	t.Cleanup(func() { dbPkg.DB = prev })

	dbPkg.DB = e.db
	w, body := e.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(body.Data), `"database":"ok"`)
	assert.Contains(t, string(body.Data), `"redis":"disabled"`)

	dbPkg.DB = nil
	w, body = e.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", body.Message)
}
