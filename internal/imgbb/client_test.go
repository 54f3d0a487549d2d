package imgbb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haytac/cogbot/internal/proxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		if r.PostForm.Get("key") != "good" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"status_code":400,"error":{"message":"Invalid API v1 key."},"status_txt":"Bad Request"}`))
			return
		}
		assert.Equal(t, "https://example.com/cat.png", r.PostForm.Get("image"))
		assert.Equal(t, "cat", r.PostForm.Get("name"))
		w.Write([]byte(`{"data":{"id":"abc","url":"https://i.ibb.co/abc/cat.png","display_url":"https://ibb.co/abc"},"success":true,"status":200}`))
	}))
	defer srv.Close()

	c := NewClient(proxy.NewHTTPClientFactory(proxy.Config{}), srv.URL+"/")

	res, err := c.Upload(context.Background(), "good", "https://example.com/cat.png", "cat")
	require.NoError(t, err)
	assert.Equal(t, "https://i.ibb.co/abc/cat.png", res.URL)
	assert.Equal(t, "abc", res.ID)

	_, err = c.Upload(context.Background(), "bad", "https://example.com/cat.png", "cat")
	require.ErrorIs(t, err, ErrAPI)
	assert.Contains(t, err.Error(), "Invalid API v1 key.")
}

func TestClient_UploadMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewClient(proxy.NewHTTPClientFactory(proxy.Config{}), srv.URL).Upload(context.Background(), "k", "img", "")
	assert.ErrorIs(t, err, ErrAPI)
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewClient(nil, "").baseURL)
}
