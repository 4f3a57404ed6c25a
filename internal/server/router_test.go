package server

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/helloca/ai-service/internal/config"
	"github.com/helloca/ai-service/internal/handler"
	"github.com/helloca/ai-service/internal/middleware"
)

func testCORS(origins ...string) config.CORSConfig {
	return config.CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}
}

func newTestServer(t *testing.T, cors config.CORSConfig, healthz http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(cors, handler.NewHandler(), healthz))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string, headers map[string]string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func TestRouter_Endpoints(t *testing.T) {
	srv := newTestServer(t, testCORS("*"), nil)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		want   string
	}{
		{name: "root", method: http.MethodGet, path: "/", status: http.StatusOK, want: `{"message":"HelloCA AI Service is running"}`},
		{name: "chat", method: http.MethodPost, path: "/api/chat", body: `{"message":"hello"}`, status: http.StatusOK, want: `{"response":"AI Response to: hello","context":null}`},
		{name: "chat with context", method: http.MethodPost, path: "/api/chat", body: `{"message":"hi","context":"greeting"}`, status: http.StatusOK, want: `{"response":"AI Response to: hi","context":"greeting"}`},
		{name: "chat missing message", method: http.MethodPost, path: "/api/chat", body: `{}`, status: http.StatusUnprocessableEntity, want: `{"detail":[{"loc":["body","message"],"msg":"field required","type":"value_error.missing"}]}`},
		{name: "unknown path", method: http.MethodGet, path: "/api/unknown", status: http.StatusNotFound, want: `{"detail":"Not Found"}`},
		{name: "wrong method", method: http.MethodGet, path: "/api/chat", status: http.StatusMethodNotAllowed, want: `{"detail":"Method Not Allowed"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := do(t, tc.method, srv.URL+tc.path, tc.body, map[string]string{"Content-Type": "application/json"})
			require.Equal(t, tc.status, resp.StatusCode)
			require.JSONEq(t, tc.want, body)
			require.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
		})
	}
}

func TestRouter_RootIsStateless(t *testing.T) {
	srv := newTestServer(t, testCORS("*"), nil)

	_, first := do(t, http.MethodGet, srv.URL+"/", "", nil)
	do(t, http.MethodPost, srv.URL+"/api/chat", `{"message":"noise"}`, nil)
	do(t, http.MethodPost, srv.URL+"/api/chat", `{}`, nil)
	resp, second := do(t, http.MethodGet, srv.URL+"/", "", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, first, second)
}

func TestRouter_ChatIsByteIdentical(t *testing.T) {
	srv := newTestServer(t, testCORS("*"), nil)

	_, first := do(t, http.MethodPost, srv.URL+"/api/chat", `{"message":"again","context":"c"}`, nil)
	_, second := do(t, http.MethodPost, srv.URL+"/api/chat", `{"message":"again","context":"c"}`, nil)
	require.True(t, bytes.Equal([]byte(first), []byte(second)))
}

func TestRouter_PanicBecomesInternalError(t *testing.T) {
	r := NewRouter(testCORS("*"), handler.NewHandler(), nil)
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("kaboom") })
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	resp, body := do(t, http.MethodGet, srv.URL+"/boom", "", nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.JSONEq(t, `{"detail":"kaboom"}`, body)

	resp, _ = do(t, http.MethodGet, srv.URL+"/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_CORSAllowList(t *testing.T) {
	srv := newTestServer(t, testCORS("http://localhost:8081"), nil)

	resp, _ := do(t, http.MethodPost, srv.URL+"/api/chat", `{"message":"x"}`, map[string]string{"Origin": "http://localhost:8081"})
	require.Equal(t, "http://localhost:8081", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/chat", `{"message":"x"}`, map[string]string{"Origin": "https://evil.example"})
	require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	srv := newTestServer(t, testCORS("*"), nil)

	resp, _ := do(t, http.MethodOptions, srv.URL+"/api/chat", "", map[string]string{
		"Origin":                         "http://localhost:8081",
		"Access-Control-Request-Method":  http.MethodPost,
		"Access-Control-Request-Headers": "Content-Type",
	})
	require.Equal(t, "http://localhost:8081", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
	require.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestRouter_CORSWildcardWithCredentials(t *testing.T) {
	srv := newTestServer(t, testCORS("*"), nil)

	for _, origin := range []string{"http://a.example", "https://app.helloca.example"} {
		resp, body := do(t, http.MethodPost, srv.URL+"/api/chat", `{"message":"x"}`, map[string]string{
			"Origin": origin,
			"Cookie": "s=1",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.JSONEq(t, `{"response":"AI Response to: x","context":null}`, body)
		require.Equal(t, origin, resp.Header.Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
		require.Contains(t, resp.Header.Values("Vary"), "Origin")
	}
}

func TestCORSOptions(t *testing.T) {
	wildcard := corsOptions(testCORS("*"))
	require.Empty(t, wildcard.AllowedOrigins)
	require.NotNil(t, wildcard.AllowOriginFunc)

	listed := corsOptions(testCORS("http://localhost:8081"))
	require.Equal(t, []string{"http://localhost:8081"}, listed.AllowedOrigins)
	require.Nil(t, listed.AllowOriginFunc)
}

func TestRouter_MountsHealthz(t *testing.T) {
	healthz := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"SERVING"}`))
	})
	srv := newTestServer(t, testCORS("*"), healthz)

	resp, body := do(t, http.MethodGet, srv.URL+"/healthz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"SERVING"}`, body)

	resp, _ = do(t, http.MethodGet, newTestServer(t, testCORS("*"), nil).URL+"/healthz", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNewHTTPServer(t *testing.T) {
	s := NewHTTPServer("0.0.0.0:8000", http.NotFoundHandler())
	require.Equal(t, "0.0.0.0:8000", s.Addr)
	require.Greater(t, s.WriteTimeout, requestTimeout)
}
