package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/blogapi/config"
)

type apiClient struct {
	t *testing.T
	r *gin.Engine
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	cfg := config.AppConfig{
		GinMode:        "test",
		DBDriver:       "sqlite",
		DatabaseURI:    dsn,
		LogLevel:       "silent",
		AllowedOrigins: []string{"*"},
		AdminUsernames: []string{"admin"},
	}
	db, err := config.OpenDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &apiClient{t: t, r: SetupRouter(db, cfg)}
}

func (c *apiClient) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	return w
}

func (c *apiClient) register(username string) string {
	c.t.Helper()
	w := c.do(http.MethodPost, "/api/users/register", "", gin.H{"username": username, "password": "longpw123"})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())
	return decode(c.t, w)["token"].(string)
}

func (c *apiClient) createArticle(token string, body gin.H) map[string]interface{} {
	c.t.Helper()
	w := c.do(http.MethodPost, "/api/blog/articles", token, body)
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())
	return decode(c.t, w)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestAliceAndBob(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/users/register", "", gin.H{"username": "alice", "password": "longpw123"})
	require.Equal(t, http.StatusCreated, w.Code)
	alice := decode(t, w)["token"].(string)
	assert.Len(t, alice, 256)

	w = api.do(http.MethodPost, "/api/users/login", "", gin.H{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	article := api.createArticle(alice, gin.H{"title": "Hello world", "content": "First post content"})
	assert.Equal(t, "alice", article["author"].(map[string]interface{})["username"])
	assert.Nil(t, article["category"])
	path := fmt.Sprintf("/api/blog/articles/%v", article["id"])

	bob := api.register("bob")
	w = api.do(http.MethodPut, path, bob, gin.H{"title": "Bob was here"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello world", decode(t, w)["title"])

	w = api.do(http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = api.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterErrors(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice")

	w := api.do(http.MethodPost, "/api/users/register", "", gin.H{"username": "alice", "password": "longpw123"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.EqualValues(t, 40901, decode(t, w)["code"])

	w = api.do(http.MethodPost, "/api/users/register", "", gin.H{"username": "al", "password": "short"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	fields := decode(t, w)["fields"].(map[string]interface{})
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "password")

	w = api.do(http.MethodPost, "/api/users/register", "", `{"username": 12, "password": "longpw123"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w)["fields"], "username")

	w = api.do(http.MethodPost, "/api/users/register", "", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRotatesAndLogout(t *testing.T) {
	api := newTestAPI(t)
	first := api.register("alice")

	w := api.do(http.MethodPost, "/api/users/login", "", gin.H{"username": "alice", "password": "longpw123"})
	require.Equal(t, http.StatusOK, w.Code)
	second := decode(t, w)["token"].(string)
	assert.NotEqual(t, first, second)

	w = api.do(http.MethodGet, "/api/users/me", first, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodGet, "/api/users/me", second, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	assert.Equal(t, "alice", me["username"])
	assert.NotContains(t, me, "password_hash")

	w = api.do(http.MethodPost, "/api/users/logout", second, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, "/api/users/me", second, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestArticleListingAndPartialUpdate(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice")
	admin := api.register("admin")

	w := api.do(http.MethodPost, "/api/blog/categories", admin, gin.H{"name": "Tech"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tech := decode(t, w)
	assert.Equal(t, "tech", tech["slug"])

	for i := 1; i <= 3; i++ {
		api.createArticle(alice, gin.H{"title": fmt.Sprintf("Article %d", i), "content": "Some article body", "category_id": tech["id"]})
	}

	w = api.do(http.MethodGet, "/api/blog/articles?page_size=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.EqualValues(t, 3, page["count"])
	assert.EqualValues(t, 2, page["total_pages"])
	items := page["items"].([]interface{})
	require.Len(t, items, 2)
	newest := items[0].(map[string]interface{})
	assert.Equal(t, "Article 3", newest["title"])
	assert.Equal(t, "tech", newest["category"].(map[string]interface{})["slug"])

	path := fmt.Sprintf("/api/blog/articles/%v", newest["id"])
	w = api.do(http.MethodPut, path, alice, gin.H{"title": "Article three"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode(t, w)
	assert.Equal(t, "Article three", updated["title"])
	assert.Equal(t, "Some article body", updated["content"])
	assert.NotNil(t, updated["category"])

	w = api.do(http.MethodPut, path, alice, `{"category_id": null}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w)["category"])

	w = api.do(http.MethodPut, path, alice, gin.H{"category_id": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPut, path, alice, gin.H{})
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodPut, path, alice, gin.H{"title": "Hi"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(http.MethodPost, "/api/blog/articles", "", gin.H{"title": "Hello world", "content": "First post content"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEmptyUpdateBodyIsNoop(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice")
	bob := api.register("bob")
	article := api.createArticle(alice, gin.H{"title": "Hello world", "content": "First post content"})
	articlePath := fmt.Sprintf("/api/blog/articles/%v", article["id"])

	w := api.do(http.MethodPost, articlePath+"/comments", bob, gin.H{"content": "Nice post"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	commentPath := fmt.Sprintf("/api/blog/comments/%v", decode(t, w)["id"])

	w = api.do(http.MethodPut, articlePath, alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	same := decode(t, w)
	assert.Equal(t, "Hello world", same["title"])
	assert.Equal(t, "First post content", same["content"])

	w = api.do(http.MethodPut, commentPath, bob, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Nice post", decode(t, w)["content"])

	w = api.do(http.MethodPut, articlePath, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPut, articlePath, alice, "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCommentsFlow(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice")
	bob := api.register("bob")
	article := api.createArticle(alice, gin.H{"title": "Hello world", "content": "First post content"})
	commentsPath := fmt.Sprintf("/api/blog/articles/%v/comments", article["id"])

	w := api.do(http.MethodPost, commentsPath, bob, gin.H{"content": "Nice post"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	comment := decode(t, w)
	assert.Equal(t, "bob", comment["author"].(map[string]interface{})["username"])
	assert.EqualValues(t, article["id"], comment["article_id"])
	commentPath := fmt.Sprintf("/api/blog/comments/%v", comment["id"])

	w = api.do(http.MethodPost, commentsPath, bob, gin.H{"content": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(http.MethodPost, "/api/blog/articles/999/comments", bob, gin.H{"content": "Nice post"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, commentsPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = api.do(http.MethodPut, commentPath, bob, gin.H{"content": ""})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Nice post", decode(t, w)["content"])

	w = api.do(http.MethodPut, commentPath, alice, gin.H{"content": "Edited"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodDelete, commentPath, alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodDelete, commentPath, bob, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, commentPath, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategoryManagement(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice")
	admin := api.register("admin")

	w := api.do(http.MethodPost, "/api/blog/categories", alice, gin.H{"name": "Tech"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	lookalike := api.register("ADMIN")
	w = api.do(http.MethodPost, "/api/blog/categories", lookalike, gin.H{"name": "Tech"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPost, "/api/blog/categories", admin, gin.H{"name": "Tech"})
	require.Equal(t, http.StatusCreated, w.Code)
	tech := decode(t, w)

	w = api.do(http.MethodPost, "/api/blog/categories", admin, gin.H{"name": "Tech"})
	assert.Equal(t, http.StatusConflict, w.Code)

	article := api.createArticle(alice, gin.H{"title": "Hello world", "content": "First post content", "category_id": tech["id"]})

	w = api.do(http.MethodGet, "/api/blog/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Tech", list[0]["name"])

	categoryPath := fmt.Sprintf("/api/blog/categories/%v", tech["id"])
	w = api.do(http.MethodDelete, categoryPath, admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, categoryPath, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, fmt.Sprintf("/api/blog/articles/%v", article["id"]), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w)["category"])
}

func TestNotFoundPaths(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{
		"/api/blog/articles/abc",
		"/api/blog/articles/0",
		"/api/blog/comments/abc",
		"/api/blog/categories/-1",
		"/api/blog/articles/12345",
		"/api/nothing-here",
	} {
		w := api.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/json"), path)
	}
}

func TestStatsAndHealth(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice")
	article := api.createArticle(alice, gin.H{"title": "Hello world", "content": "First post content"})
	w := api.do(http.MethodPost, fmt.Sprintf("/api/blog/articles/%v/comments", article["id"]), alice, gin.H{"content": "me first"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.do(http.MethodGet, "/api/blog/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)
	assert.EqualValues(t, 1, stats["user_count"])
	assert.EqualValues(t, 1, stats["article_count"])
	assert.EqualValues(t, 1, stats["comment_count"])
	assert.EqualValues(t, 0, stats["category_count"])

	w = api.do(http.MethodGet, fmt.Sprintf("/api/blog/articles/%v/stats", article["id"]), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["comments_count"])

	w = api.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
