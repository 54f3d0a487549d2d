package osu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haytac/cogbot/internal/proxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userJSON = `[{"user_id":"2","username":"peppy","join_date":"2007-08-28 03:09:12","playcount":"1000",
"ranked_score":"123456789","pp_rank":null,"level":"65.5","pp_raw":"0","accuracy":"97.123",
"country":"AU","events":[{"display_html":"<b>peppy</b> did a thing","date":"2024-01-01 00:00:00"}]}]`

func newTestClient(url string) *Client {
	c := NewClient(proxy.NewHTTPClientFactory(proxy.Config{}), Config{BaseURL: url, AvatarURL: url + "/a"})
	c.retryDelay = time.Millisecond
	return c
}

func TestClient_GetUser(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/get_user", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("k"))
		assert.Equal(t, "1", r.URL.Query().Get("m"))
		if r.URL.Query().Get("u") == "peppy" {
			w.Write([]byte(userJSON))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	ctx := context.Background()

	u, err := c.GetUser(ctx, "key", "peppy", Taiko)
	require.NoError(t, err)
	assert.Equal(t, "2", u.UserID)
	assert.Equal(t, "", u.PPRank, "null decodes to empty")
	require.Len(t, u.Events, 1)

	_, err = c.GetUser(ctx, "key", "PEPPY", Taiko)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second lookup served from cache")

	_, err = c.GetUser(ctx, "key", "nobody", Taiko)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestClient_Retry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(userJSON))
	}))
	defer srv.Close()

	u, err := newTestClient(srv.URL).GetUser(context.Background(), "key", "peppy", Standard)
	require.NoError(t, err)
	assert.Equal(t, "peppy", u.Username)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Please provide a valid API key."}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetUser(context.Background(), "bad", "peppy", Standard)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "bad", "api key is not leaked into errors")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Avatar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/a/2" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("PNG"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	data, ct, err := c.Avatar(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, []byte("PNG"), data)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, srv.URL+"/a/2", c.AvatarURL("2"))

	_, _, err = c.Avatar(context.Background(), "3")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "123,456,789", Comma("123456789"))
	assert.Equal(t, "0", Comma(""))
	assert.Equal(t, "1,235", Comma("1234.6"))
	assert.Equal(t, "1,234.57", Decimal("1234.5678"))
	assert.Equal(t, "65 (50%)", Level("65.5"))
	assert.Equal(t, "97.12%", Accuracy("97.123"))
	assert.Equal(t, "1d 1h 1m", Playtime("90060"))
	assert.Equal(t, "2h 0m", Playtime("7200"))
	assert.Equal(t, "0m", Playtime(""))
	assert.Equal(t, "-", Rank(""))
	assert.Equal(t, "#1,234", Rank("1234"))

	now := time.Date(2010, 8, 28, 3, 9, 12, 0, time.UTC)
	assert.Equal(t, "3 years ago", JoinedAgo("2007-08-28 03:09:12", now))
	assert.Equal(t, "garbage", JoinedAgo("garbage", now))

	assert.Equal(t, "https://x/sig.php?uname=a+b&mode=3", CardURL("https://x/sig.php?uname={username}&mode={mode}", "a b", Mania))
	assert.Equal(t, "https://osu.ppy.sh/users/2/fruits", ProfileURL("2", Catch))
	assert.Equal(t, "osu!catch", Catch.String())
}
