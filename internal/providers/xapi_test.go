package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/ai-tracker/internal/domain"
)

func newXAPIServer(t *testing.T, users map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case strings.HasPrefix(r.URL.Path, "/users/by/username/"):
			name := strings.TrimPrefix(r.URL.Path, "/users/by/username/")
			id, ok := users[name]
			if !ok {
				_, _ = w.Write([]byte(`{"errors":[{"title":"Not Found Error"}]}`))
				return
			}
			fmt.Fprintf(w, `{"data":{"id":%q,"username":%q}}`, id, name)
		case strings.HasSuffix(r.URL.Path, "/tweets"):
			if r.URL.Query().Get("start_time") == "" || r.URL.Query().Get("max_results") != "5" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			fmt.Fprintf(w, `{"data":[{"id":"t-%s","text":"hello","created_at":%q,"public_metrics":{"like_count":3,"retweet_count":1,"reply_count":0,"quote_count":2,"impression_count":50}}]}`,
				strings.Split(r.URL.Path, "/")[2], now.Add(-time.Hour).Format(time.RFC3339))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestXAPI_FetchPostsWithBearer(t *testing.T) {
	srv := newXAPIServer(t, map[string]string{"OpenAI": "1"})
	defer srv.Close()

	x := NewXAPI(XAPIConfig{BearerToken: "tok", BaseURL: srv.URL, Window: 24 * time.Hour, Now: fixedNow})
	res := x.FetchPosts(context.Background(), "OpenAI", 3)
	if !res.OK || len(res.Posts) != 1 {
		t.Fatalf("result = %+v", res)
	}
	p := res.Posts[0]
	if p.ID != "t-1" || p.Metrics.LikeCount != 3 || p.Metrics.QuoteCount != 2 || p.Source != domain.SourceOfficialAPI {
		t.Fatalf("post = %+v", p)
	}
}

func TestXAPI_FetchAllFansOutAndDropsEmpty(t *testing.T) {
	srv := newXAPIServer(t, map[string]string{"OpenAI": "1"})
	defer srv.Close()

	tools := []domain.Tool{
		{ID: "chatgpt", Handle: "OpenAI"},
		{ID: "ghost", Handle: "Nobody"},
		{ID: "sora", Handle: "@OpenAI"},
	}
	x := NewXAPI(XAPIConfig{BearerToken: "tok", BaseURL: srv.URL, Window: 24 * time.Hour, BatchSize: 1, Now: fixedNow})
	res := x.FetchAll(context.Background(), tools, 5)
	if len(res.Tools) != 2 {
		t.Fatalf("tools = %+v", res.Tools)
	}
	for _, tw := range res.Tools {
		if tw.PostCount != 1 || tw.LatestPost == nil || tw.LatestPost.ID != "t-1" {
			t.Fatalf("tool = %+v", tw)
		}
	}
	if res.Tools[0].ID != "chatgpt" || res.Tools[1].ID != "sora" {
		t.Fatalf("order = %s, %s", res.Tools[0].ID, res.Tools[1].ID)
	}
}

func TestXAPI_NotConfiguredAndUnauthorized(t *testing.T) {
	if res := NewXAPI(XAPIConfig{}).FetchAll(context.Background(), []domain.Tool{{ID: "a", Handle: "a"}}, 5); res.Reason != ReasonNotConfigured {
		t.Fatalf("bulk result = %+v", res)
	}

	srv := newXAPIServer(t, map[string]string{"OpenAI": "1"})
	defer srv.Close()
	x := NewXAPI(XAPIConfig{BearerToken: "wrong", BaseURL: srv.URL, Now: fixedNow})
	if res := x.FetchPosts(context.Background(), "OpenAI", 5); res.OK || res.Reason != ReasonHTTP {
		t.Fatalf("result = %+v", res)
	}
}
