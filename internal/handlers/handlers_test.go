package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/naija-emoji/apiserver/internal/db/dbtest"
	"github.com/naija-emoji/apiserver/internal/services"
	"github.com/naija-emoji/apiserver/internal/store"
	"github.com/naija-emoji/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	conn := dbtest.NewSQLite(t)

	auth := services.NewAuthService(store.NewUserRepository(conn), 0, nil)
	emojis := services.NewEmojiService(store.NewEmojiRepository(conn), nil, nil)

	router := chi.NewRouter()
	router.Use(middleware.StripSlashes)
	router.Get("/", Welcome)
	router.Get("/healthz", Healthz(conn))
	router.Route("/emojis", func(r chi.Router) {
		EmojiRouter(r, emojis, RequireToken(auth, nil), nil)
	})
	router.Route("/search", func(r chi.Router) {
		SearchRouter(r, emojis, nil)
	})
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, auth, nil)
	})
	return router
}

type call struct {
	method string
	path   string
	form   url.Values
	token  string
}

func do(t *testing.T, handler http.Handler, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body *strings.Reader
	if c.form != nil {
		body = strings.NewReader(c.form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(c.method, c.path, body)
	if c.form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.token != "" {
		req.Header.Set(TokenHeader, c.token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Message
}

func login(t *testing.T, handler http.Handler, username, password string) string {
	t.Helper()
	creds := url.Values{"username": {username}, "password": {password}}
	rec := do(t, handler, call{method: http.MethodPost, path: "/auth/register", form: creds})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, handler, call{method: http.MethodPost, path: "/auth/login", form: creds})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func innocentForm() url.Values {
	return url.Values{
		"name":     {"innocent"},
		"char":     {"😇"},
		"keywords": {"happy, holy, angel"},
		"category": {"person"},
	}
}

func TestWelcomeAndHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, call{method: http.MethodGet, path: "/"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "welcome to the naija-emoji RESTful Api", messageOf(t, rec))

	rec = do(t, router, call{method: http.MethodGet, path: "/healthz"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

type downPinger struct{}

func (downPinger) PingContext(context.Context) error { return errors.New("down") }

func TestHealthzUnavailable(t *testing.T) {
	rec := httptest.NewRecorder()
	Healthz(downPinger{})(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestEmojiLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, call{method: http.MethodGet, path: "/emojis"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	token := login(t, router, "kemi", "secret")

	rec = do(t, router, call{method: http.MethodPost, path: "/emojis", form: innocentForm(), token: token})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Emoji added succesfully.", messageOf(t, rec))

	rec = do(t, router, call{method: http.MethodGet, path: "/emojis/"})
	require.Equal(t, http.StatusOK, rec.Code)
	var list []types.Emoji
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "kemi", list[0].CreatedBy)
	assert.Equal(t, types.Keywords{"happy", "holy", "angel"}, list[0].Keywords)
	assert.Contains(t, rec.Body.String(), `"keywords":["happy","holy","angel"]`)

	rec = do(t, router, call{method: http.MethodGet, path: "/emojis/1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, call{method: http.MethodPatch, path: "/emojis/1", form: url.Values{"name": {"angel"}}, token: token})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Emoji updated succesfully.", messageOf(t, rec))

	rec = do(t, router, call{method: http.MethodGet, path: "/emojis/name/angel"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, call{method: http.MethodGet, path: "/search?field=keywords&name=holy"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, call{method: http.MethodGet, path: "/emojis/category/animal"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no emojis found whose category field is animal", messageOf(t, rec))

	rec = do(t, router, call{method: http.MethodPut, path: "/emojis/1", form: url.Values{"name": {"x"}}, token: token})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing some required fields", messageOf(t, rec))

	rec = do(t, router, call{method: http.MethodPut, path: "/emojis/99", form: innocentForm(), token: token})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no emoji found", messageOf(t, rec))

	rec = do(t, router, call{method: http.MethodDelete, path: "/emojis/1", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Emoji deleted succesfully.", messageOf(t, rec))

	rec = do(t, router, call{method: http.MethodDelete, path: "/emojis/1", token: token})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Error deleting emoji.", messageOf(t, rec))

	rec = do(t, router, call{method: http.MethodGet, path: "/emojis/1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no emoji found", messageOf(t, rec))
}

func TestTokenGate(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, call{method: http.MethodPost, path: "/emojis", form: innocentForm()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No token provided.", messageOf(t, rec))

	rec = do(t, router, call{method: http.MethodPost, path: "/emojis", form: innocentForm(), token: "bogus"})
	assert.Equal(t, "invalid token.", messageOf(t, rec))

	token := login(t, router, "kemi", "secret")
	req := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	req.Header.Add(TokenHeader, token)
	req.Header.Add(TokenHeader, token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "No token provided.", messageOf(t, rec))

	rec = do(t, router, call{method: http.MethodGet, path: "/auth/logout", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "successfully logged out.", messageOf(t, rec))

	rec = do(t, router, call{method: http.MethodPost, path: "/emojis", form: innocentForm(), token: token})
	assert.Equal(t, "invalid token.", messageOf(t, rec))
}

func TestAuthErrors(t *testing.T) {
	router := newTestRouter(t)
	login(t, router, "kemi", "secret")

	rec := do(t, router, call{method: http.MethodPost, path: "/auth/register", form: url.Values{"username": {"kemi"}, "password": {"other"}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists.", messageOf(t, rec))

	rec = do(t, router, call{method: http.MethodPost, path: "/auth/register", form: url.Values{"username": {"tunde"}}})
	assert.Equal(t, "Missing some required fields", messageOf(t, rec))

	rec = do(t, router, call{method: http.MethodPost, path: "/auth/register", form: url.Values{"username": {"tunde"}, "password": {" "}}})
	assert.Equal(t, "Empty values provided.", messageOf(t, rec))

	rec = do(t, router, call{method: http.MethodPost, path: "/auth/login", form: url.Values{"username": {"kemi"}, "password": {"wrong"}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid login credentials.", messageOf(t, rec))
}

func TestLoginExpiry(t *testing.T) {
	router := newTestRouter(t)
	creds := url.Values{"username": {"kemi"}, "password": {"secret"}}
	do(t, router, call{method: http.MethodPost, path: "/auth/register", form: creds})

	before := time.Now().Unix()
	rec := do(t, router, call{method: http.MethodPost, path: "/auth/login", form: creds})
	after := time.Now().Unix()

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "login successful", resp.Message)
	assert.Len(t, resp.Token, 64)
	assert.GreaterOrEqual(t, resp.Expires, before+86400)
	assert.LessOrEqual(t, resp.Expires, after+86400)
}

func TestParseFieldsJSONAndMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"kemi","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	fields, err := parseFields(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.Equal(t, services.Fields{"username": "kemi", "password": "secret"}, fields)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":1}`))
	req.Header.Set("Content-Type", "application/json")
	_, err = parseFields(httptest.NewRecorder(), req)
	assert.ErrorIs(t, err, errBadBody)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("name", "innocent"))
	require.NoError(t, writer.WriteField("category", ""))
	require.NoError(t, writer.Close())
	req = httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	fields, err = parseFields(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.Equal(t, services.Fields{"name": "innocent", "category": ""}, fields)
}

func TestRegisterLoginCreateScenario(t *testing.T) {
	router := newTestRouter(t)
	creds := url.Values{"username": {"kemi"}, "password": {"123456"}}

	rec := do(t, router, call{method: http.MethodPost, path: "/auth/register", form: creds})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"User successfully registered."}`, rec.Body.String())

	rec = do(t, router, call{method: http.MethodPost, path: "/auth/login", form: creds})
	require.Equal(t, http.StatusOK, rec.Code)
	var session LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)

	form := url.Values{
		"name":     {"innocent"},
		"char":     {"😇"},
		"keywords": {"happy,holy,angel"},
		"category": {"person"},
	}
	rec = do(t, router, call{method: http.MethodPost, path: "/emojis", form: form, token: session.Token})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, call{method: http.MethodGet, path: "/emojis/1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var emoji types.Emoji
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &emoji))
	assert.Equal(t, 1, emoji.ID)
	assert.Equal(t, "kemi", emoji.CreatedBy)
	assert.Equal(t, "😇", emoji.Char)
	assert.Equal(t, types.Keywords{"happy", "holy", "angel"}, emoji.Keywords)
}
