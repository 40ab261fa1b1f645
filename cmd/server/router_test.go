package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/microblog/internal/config"
	"github.com/thereayou/microblog/internal/database"
	"github.com/thereayou/microblog/internal/models"
	"github.com/thereayou/microblog/internal/testing/testdb"
)

type testApp struct {
	t   *testing.T
	srv *Server
	db  *database.Database
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db := testdb.New(t, nil)
	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", Env: "test", BaseURL: "http://localhost"},
		JWT:    config.JWTConfig{Secret: "test-secret", TTL: time.Hour},
		App:    config.AppConfig{PostsPerPage: 2, Languages: []string{"en"}},
	}

	srv := New(cfg, db, rdb)
	go srv.Hub.Run()
	t.Cleanup(srv.Hub.Stop)

	return &testApp{t: t, srv: srv, db: db}
}

func (a *testApp) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.srv.Router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// signup регистрирует пользователя и возвращает его токен
func (a *testApp) signup(username string) string {
	a.t.Helper()

	w := a.do(http.MethodPost, "/auth/register", "", gin.H{
		"username":  username,
		"email":     username + "@example.com",
		"password":  "cat-password",
		"password2": "cat-password",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return a.login(username, "cat-password")
}

func (a *testApp) login(username, password string) string {
	a.t.Helper()

	w := a.do(http.MethodPost, "/auth/login", "", gin.H{"username": username, "password": password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decode[map[string]string](a.t, w)["token"]
}

func (a *testApp) user(username string) *models.User {
	a.t.Helper()
	u, err := a.db.FindUserByUsername(context.Background(), username)
	require.NoError(a.t, err)
	return u
}

type postPage struct {
	Items []struct {
		Body     string `json:"body"`
		Language string `json:"language"`
		Author   struct {
			Username string `json:"username"`
		} `json:"author"`
	} `json:"items"`
	Total   int64  `json:"total"`
	NextURL string `json:"next_url"`
	PrevURL string `json:"prev_url"`
}

func TestPostRequiresAuth(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/api/v1/index", "", gin.H{"post": "hello"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(http.MethodGet, "/api/v1/explore", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPanicRecovered(t *testing.T) {
	app := newTestApp(t)
	app.srv.Router.GET("/api/v1/explode", func(c *gin.Context) {
		panic("kaboom")
	})

	w := app.do(http.MethodGet, "/api/v1/explode", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"An unexpected error has occurred"}`, w.Body.String())

	// сервер продолжает обслуживать запросы
	w = app.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNoRoute(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"File Not Found"}`, w.Body.String())
}

func TestRegisterLoginLogout(t *testing.T) {
	app := newTestApp(t)
	token := app.signup("susan")

	t.Run("duplicate username", func(t *testing.T) {
		w := app.do(http.MethodPost, "/auth/register", "", gin.H{
			"username": "susan", "email": "other@example.com", "password": "x", "password2": "x",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Please use a different username.")
	})

	t.Run("duplicate email", func(t *testing.T) {
		w := app.do(http.MethodPost, "/auth/register", "", gin.H{
			"username": "other", "email": "susan@example.com", "password": "x", "password2": "x",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Please use a different email address.")
	})

	t.Run("passwords differ", func(t *testing.T) {
		w := app.do(http.MethodPost, "/auth/register", "", gin.H{
			"username": "other", "email": "other@example.com", "password": "x", "password2": "y",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := app.do(http.MethodPost, "/auth/login", "", gin.H{"username": "susan", "password": "dog"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid username or password")
	})

	w := app.do(http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]any](t, w)
	assert.Equal(t, "susan@example.com", me["email"])

	w = app.do(http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFollowFlow(t *testing.T) {
	app := newTestApp(t)
	john := app.signup("john")
	app.signup("susan")

	for i := 0; i < 2; i++ {
		w := app.do(http.MethodPost, "/api/v1/follow/susan", john, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "You are following susan")
	}

	w := app.do(http.MethodGet, "/api/v1/user/susan", john, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode[struct {
		User struct {
			Followers   int64 `json:"followers_count"`
			IsFollowing bool  `json:"is_following"`
		} `json:"user"`
	}](t, w)
	assert.Equal(t, int64(1), profile.User.Followers)
	assert.True(t, profile.User.IsFollowing)

	w = app.do(http.MethodPost, "/api/v1/follow/john", john, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodPost, "/api/v1/follow/nobody", john, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(http.MethodGet, "/api/v1/user/nobody/popup", john, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(http.MethodPost, "/api/v1/unfollow/susan", john, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = app.do(http.MethodPost, "/api/v1/unfollow/susan", john, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestPostsAndFeed(t *testing.T) {
	app := newTestApp(t)
	john := app.signup("john")
	susan := app.signup("susan")
	app.signup("mary")

	w := app.do(http.MethodPost, "/api/v1/index", john, gin.H{"post": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodPost, "/api/v1/index", john, gin.H{"post": strings.Repeat("x", 141)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	now := time.Now().UTC()
	testdb.CreatePost(t, app.db, app.user("susan"), "susan one", now.Add(-3*time.Second))
	testdb.CreatePost(t, app.db, app.user("susan"), "susan two", now.Add(-2*time.Second))
	testdb.CreatePost(t, app.db, app.user("mary"), "mary was here", now.Add(-1*time.Second))

	w = app.do(http.MethodPost, "/api/v1/index", john, gin.H{
		"post": "The quick brown fox jumps over the lazy dog and keeps running through the forest",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Your post is now live!")
	assert.Contains(t, w.Body.String(), `"language":"en"`)

	require.Equal(t, http.StatusOK, app.do(http.MethodPost, "/api/v1/follow/susan", john, nil).Code)

	w = app.do(http.MethodGet, "/api/v1/index", john, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[postPage](t, w)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "john", page.Items[0].Author.Username)
	assert.Equal(t, "susan two", page.Items[1].Body)
	assert.Equal(t, "/api/v1/index?page=2", page.NextURL)
	assert.Empty(t, page.PrevURL)

	w = app.do(http.MethodGet, page.NextURL, john, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[postPage](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "susan one", page.Items[0].Body)
	assert.Equal(t, "/api/v1/index?page=1", page.PrevURL)

	// explore видит и посты mary
	w = app.do(http.MethodGet, "/api/v1/explore?page=1", susan, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(4), decode[postPage](t, w).Total)
}

func TestEditProfile(t *testing.T) {
	app := newTestApp(t)
	john := app.signup("john")
	app.signup("susan")

	w := app.do(http.MethodPut, "/api/v1/edit_profile", john, gin.H{"username": "susan", "about_me": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// своё имя оставить можно
	w = app.do(http.MethodPut, "/api/v1/edit_profile", john, gin.H{"username": "john", "about_me": "hi there"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Your changes have been saved.")

	w = app.do(http.MethodPut, "/api/v1/edit_profile", john, gin.H{"username": "john", "about_me": strings.Repeat("a", 141)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, "hi there", app.user("john").AboutMe)
}

func TestMessagesAndNotifications(t *testing.T) {
	app := newTestApp(t)
	john := app.signup("john")
	susan := app.signup("susan")

	w := app.do(http.MethodPost, "/api/v1/send_message/nobody", john, gin.H{"message": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, text := range []string{"hi", "there"} {
		w = app.do(http.MethodPost, "/api/v1/send_message/susan", john, gin.H{"message": text})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	type event struct {
		Name      string  `json:"name"`
		Data      float64 `json:"data"`
		Timestamp float64 `json:"timestamp"`
	}

	w = app.do(http.MethodGet, "/api/v1/notifications?since=0", susan, nil)
	require.Equal(t, http.StatusOK, w.Code)
	events := decode[[]event](t, w)
	require.Len(t, events, 1)
	assert.Equal(t, models.NotificationUnreadMessages, events[0].Name)
	assert.Equal(t, float64(2), events[0].Data)

	w = app.do(http.MethodGet, "/api/v1/messages", susan, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"body":"there"`)

	w = app.do(http.MethodGet, "/api/v1/notifications", susan, nil)
	require.Equal(t, http.StatusOK, w.Code)
	events = decode[[]event](t, w)
	require.Len(t, events, 1)
	assert.Zero(t, events[0].Data)

	w = app.do(http.MethodGet, "/api/v1/notifications?since=abc", susan, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchAndTranslateUnconfigured(t *testing.T) {
	app := newTestApp(t)
	token := app.signup("john")

	w := app.do(http.MethodGet, "/api/v1/search", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodGet, "/api/v1/search?q=hello", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[postPage](t, w).Items)

	w = app.do(http.MethodPost, "/api/v1/translate", token, gin.H{
		"text": "Hello", "source_language": "en", "dest_language": "es",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"text":"Error: the translation service is not configured."}`, w.Body.String())
}

func TestPasswordReset(t *testing.T) {
	app := newTestApp(t)
	app.signup("susan")

	for _, address := range []string{"susan@example.com", "nobody@example.com"} {
		w := app.do(http.MethodPost, "/auth/reset_password_request", "", gin.H{"email": address})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Check your email")
	}

	form := gin.H{"password": "dog-password", "password2": "dog-password"}

	w := app.do(http.MethodPost, "/auth/reset_password/garbage", "", form)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	token, err := app.srv.JWTManager.GenerateResetToken(app.user("susan").ID)
	require.NoError(t, err)

	w = app.do(http.MethodPost, "/auth/reset_password/"+token, "", form)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Your password has been reset.")

	app.login("susan", "dog-password")
}

func TestWebSocketReceivesNotifications(t *testing.T) {
	app := newTestApp(t)
	john := app.signup("john")
	susan := app.signup("susan")
	susanID := app.user("susan").ID

	ts := httptest.NewServer(app.srv.Router)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws?token=" + susan
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return app.srv.Hub.IsOnline(susanID) }, time.Second, 5*time.Millisecond)

	w := app.do(http.MethodGet, "/api/v1/user/susan/popup", john, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[map[string]any](t, w)["is_online"].(bool))

	w = app.do(http.MethodGet, "/api/v1/user/john/popup", susan, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[map[string]any](t, w)["is_online"].(bool))

	w = app.do(http.MethodPost, "/api/v1/send_message/susan", john, gin.H{"message": "ping me"})
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type string `json:"type"`
		Data struct {
			Name string  `json:"name"`
			Data float64 `json:"data"`
		} `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "notification", msg.Type)
	assert.Equal(t, models.NotificationUnreadMessages, msg.Data.Name)
	assert.Equal(t, float64(1), msg.Data.Data)
}
