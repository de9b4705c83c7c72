package imagesource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexivanou/citylist-api/internal/config"
	"github.com/alexivanou/citylist-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultTimeout = 5 * time.Second

func newTestClient(token string) *Client {
	return NewClient(config.ImageSourceConfig{
		AuthToken:      token,
		UserAgent:      "city-list-test/1.0",
		ConnectTimeout: defaultTimeout,
		ReadTimeout:    defaultTimeout,
	})
}

func TestClient_Fetch(t *testing.T) {
	var gotAuth, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/ok.jpg":
			w.Write([]byte("image-bytes"))
		case "/forbidden.jpg":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := newTestClient("token-123")

	t.Run("success sends headers", func(t *testing.T) {
		data, err := client.Fetch(context.Background(), srv.URL+"/ok.jpg")
		require.NoError(t, err)
		assert.Equal(t, "image-bytes", string(data))
		assert.Equal(t, "Bearer token-123", gotAuth)
		assert.Equal(t, "city-list-test/1.0", gotAgent)
	})

	tests := []struct {
		name string
		url  string
	}{
		{name: "not found", url: srv.URL + "/missing.jpg"},
		{name: "forbidden", url: srv.URL + "/forbidden.jpg"},
		{name: "malformed url", url: "://bad"},
		{name: "unreachable host", url: "http://127.0.0.1:1/x.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := client.Fetch(context.Background(), tt.url)
			assert.ErrorIs(t, err, model.ErrImageNotFound)
			assert.Nil(t, data)
		})
	}
}

func TestClient_ReadTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("late"))
	}))
	defer srv.Close()

	client := NewClient(config.ImageSourceConfig{ReadTimeout: 20 * time.Millisecond})
	_, err := client.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, model.ErrImageNotFound)
}

func TestHeaderTransport(t *testing.T) {
	var gotAuth, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	t.Run("keeps existing authorization", func(t *testing.T) {
		client := newTestClient("token-123")
		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Basic abc")
		req.Header.Set("User-Agent", "caller")

		resp, err := client.httpClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, "Basic abc", gotAuth)
		assert.Equal(t, "city-list-test/1.0", gotAgent)
		// the caller's request is left untouched
		assert.Equal(t, "caller", req.Header.Get("User-Agent"))
	})

	t.Run("no token configured", func(t *testing.T) {
		client := newTestClient("")
		_, err := client.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Empty(t, gotAuth)
	})
}
