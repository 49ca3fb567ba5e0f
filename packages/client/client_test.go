package client

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, defaults *Options) *Client {
	t.Helper()
	c, err := New(WithDefaults(defaults))
	require.NoError(t, err)
	return c
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/todos", r.URL.Path)
		assert.Equal(t, "page=2", r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	c := newTestClient(t, &Options{Base: server.URL})
	resp, err := c.Get("/todos", &Options{Query: []Param{{"page", "2"}}})

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.True(t, resp.IsJSON())
}

func TestClient_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(body)
		assert.Equal(t, `{"title":"A"}`, string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7}`))
	}))
	defer server.Close()

	c := newTestClient(t, &Options{Base: server.URL})
	resp, err := c.Post("/todos", &Options{
		Type:   TypeJSON,
		Fields: []Field{{Name: "title", Value: "A"}},
	})

	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, int64(7), resp.JSON("id").Int())
}

func TestClient_DefaultHeaderOverriddenPerCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "per-call", r.Header.Get("X-Token"))
		assert.Equal(t, "kept", r.Header.Get("X-Default"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := newTestClient(t, &Options{
		Base:    server.URL,
		Headers: map[string]string{"X-Token": "default", "X-Default": "kept"},
	})
	_, err := c.Get("/", &Options{Headers: map[string]string{"X-Token": "per-call"}})

	require.NoError(t, err)
}

func TestClient_CookieRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			w.Header().Add("Set-Cookie", "sid=abc123; Path=/; HttpOnly")
			w.WriteHeader(http.StatusOK)
		case "/me":
			assert.Contains(t, r.Header.Get("Cookie"), "sid=abc123")
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	c := newTestClient(t, &Options{Base: server.URL})

	resp, err := c.Get("/login", nil)
	require.NoError(t, err)
	cookie, ok := resp.Cookie("sid")
	require.True(t, ok)
	assert.Equal(t, "abc123", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HasFlag("HttpOnly"))

	// The jar supplies the cookie on the next request.
	_, err = c.Get("/me", nil)
	require.NoError(t, err)

	stored, ok := c.Cookie("sid")
	require.True(t, ok)
	assert.Equal(t, "abc123", stored.Value)
}

func TestClient_JarOffPerCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Cookie"))
		w.Header().Add("Set-Cookie", "sid=abc")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := newTestClient(t, &Options{Base: server.URL})
	_, err := c.Get("/", &Options{Jar: JarOff})
	require.NoError(t, err)

	// Nothing absorbed.
	assert.Empty(t, c.Cookies())
}

func TestClient_HTTPErrorRaised(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(t, &Options{Base: server.URL})
	resp, err := c.Get("/missing", nil)

	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, "404 Not Found", clientErr.Error())
	assert.Equal(t, 404, clientErr.StatusCode())
	// The response still rides along for inspection.
	require.NotNil(t, resp)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestClient_HTTPErrorSuppressed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(t, &Options{Base: server.URL, FailOnHTTPError: BoolPtr(false)})
	resp, err := c.Get("/missing", nil)

	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestClient_ServerErrorRaised(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	c := newTestClient(t, &Options{Base: server.URL})
	_, err := c.Get("/", nil)

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, "502 Bad Gateway", serverErr.Error())
}

func TestClient_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := newTestClient(t, &Options{Base: url})
	_, err := c.Get("/", nil)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr, "connect-refused must map to ConnectionError, not RequestError")
	assert.Equal(t, 500, connErr.StatusCode())

	var reqErr *RequestError
	assert.False(t, errors.As(err, &reqErr))
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done() // hold the connection open past the deadline
	}))
	defer server.Close()

	c := newTestClient(t, &Options{Base: server.URL})
	_, err := c.Get("/", &Options{Overrides: map[string]any{"timeout": "50ms"}})

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, 504, connErr.StatusCode())
}

func TestClient_RedirectLoop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer server.Close()

	c := newTestClient(t, &Options{Base: server.URL, MaxRedirects: 3})
	_, err := c.Get("/loop", nil)

	var redirectErr *TooManyRedirectsError
	require.ErrorAs(t, err, &redirectErr)
}

func TestClient_NoFollowReturnsRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/next", http.StatusFound)
	}))
	defer server.Close()

	c := newTestClient(t, &Options{
		Base:            server.URL,
		FollowRedirects: BoolPtr(false),
		FailOnHTTPError: BoolPtr(false),
	})
	resp, err := c.Get("/", nil)

	require.NoError(t, err)
	assert.Equal(t, 302, resp.StatusCode)
	assert.True(t, resp.IsRedirect())
}

func TestClient_Head(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "HEAD", r.Method)
		w.Header().Set("X-Count", "12")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := newTestClient(t, &Options{Base: server.URL})
	resp, err := c.Head("/stats", nil)

	require.NoError(t, err)
	assert.Empty(t, resp.Body)
	assert.Equal(t, "12", resp.Header("X-Count"))
}

func TestClient_Verbs(t *testing.T) {
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := newTestClient(t, &Options{Base: server.URL})

	calls := []struct {
		method string
		call   func() (*Response, error)
	}{
		{"PUT", func() (*Response, error) { return c.Put("/", nil) }},
		{"PATCH", func() (*Response, error) { return c.Patch("/", nil) }},
		{"DELETE", func() (*Response, error) { return c.Delete("/", nil) }},
	}
	for _, tc := range calls {
		_, err := tc.call()
		require.NoError(t, err, tc.method)
		assert.Equal(t, tc.method, gotMethod)
	}
}

func TestClient_PerCallCookieRemembered(t *testing.T) {
	var cookieOnSecond string
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 2 {
			cookieOnSecond = r.Header.Get("Cookie")
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := newTestClient(t, &Options{Base: server.URL})

	_, err := c.Get("/", &Options{Cookies: map[string]string{"lang": "en"}})
	require.NoError(t, err)

	_, err = c.Get("/", nil)
	require.NoError(t, err)

	assert.Contains(t, cookieOnSecond, "lang=en")
}

func TestClient_FileBackedJar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "sid=persisted")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	jarPath := t.TempDir() + "/jar.json"

	c := newTestClient(t, &Options{Base: server.URL, Jar: jarPath})
	_, err := c.Get("/", nil)
	require.NoError(t, err)

	// A second client instance sees the persisted cookie.
	c2 := newTestClient(t, &Options{Base: server.URL, Jar: jarPath})
	cookie, ok := c2.Cookie("sid")
	require.True(t, ok)
	assert.Equal(t, "persisted", cookie.Value)
}

func ExampleClient_Get() {
	c, _ := New(WithDefaults(&Options{Base: "http://localhost:8080"}))
	resp, err := c.Get("/health", nil)
	if err != nil {
		fmt.Println("request failed:", err)
		return
	}
	fmt.Println(resp.StatusCode)
}
