package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tbourn/ai-tracker/internal/domain"
)

func TestRapidAPI_NotConfigured(t *testing.T) {
	r := NewRapidAPI(RapidAPIConfig{Host: "example.test"})
	if r.Configured() {
		t.Fatalf("adapter without key should not be configured")
	}
	if res := r.FetchPosts(context.Background(), "x", 5); res.Reason != ReasonNotConfigured {
		t.Fatalf("result = %+v", res)
	}
}

func TestRapidAPI_NormalizesTimeline(t *testing.T) {
	var gotKey, gotHost, gotScreen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey, gotHost = r.Header.Get("x-rapidapi-key"), r.Header.Get("x-rapidapi-host")
		gotScreen = r.URL.Query().Get("screenname")
		if r.URL.Path != "/timeline.php" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `{"timeline":[
			{"tweet_id":"10","text":"fresh","created_at":%q,"favorites":5,"retweets":1,"replies":2,"views":"900","bookmarks":3,"quotes":4,
			 "media":[{"type":"photo","media_url_https":"https://img/a.jpg"}],
			 "quoted":{"tweet_id":"9","text":"inner","author":{"name":"Anthropic","screen_name":"AnthropicAI"}}},
			{"tweet_id":"11","text":"stale","created_at":%q},
			{"text":"no id","created_at":%q}
		]}`, twitterTime(now.Add(-time.Hour)), twitterTime(now.Add(-48*time.Hour)), twitterTime(now))
	}))
	defer srv.Close()

	r := NewRapidAPI(RapidAPIConfig{Key: "k", Host: "twitter-api45.p.rapidapi.com", BaseURL: srv.URL, Window: 24 * time.Hour, Now: fixedNow})
	res := r.FetchPosts(context.Background(), "@OpenAI", 5)
	if !res.OK || len(res.Posts) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if gotKey != "k" || gotHost != "twitter-api45.p.rapidapi.com" || gotScreen != "OpenAI" {
		t.Fatalf("headers key=%q host=%q screen=%q", gotKey, gotHost, gotScreen)
	}
	p := res.Posts[0]
	want := domain.Metrics{LikeCount: 5, RepostCount: 1, ReplyCount: 2, ImpressionCount: 900, BookmarkCount: 3, QuoteCount: 4}
	if p.Metrics != want {
		t.Fatalf("metrics = %+v", p.Metrics)
	}
	if p.Source != domain.SourcePaidAPI || p.URL != "https://x.com/OpenAI/status/10" {
		t.Fatalf("post = %+v", p)
	}
	if len(p.Media) != 1 || p.Media[0].Type != domain.MediaPhoto {
		t.Fatalf("media = %+v", p.Media)
	}
	if p.QuotedPost == nil || p.QuotedPost.ID != "9" || p.QuotedPost.Handle != "AnthropicAI" {
		t.Fatalf("quoted = %+v", p.QuotedPost)
	}
}

func TestRapidAPI_RateLimitIsSkippedWithoutRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	r := NewRapidAPI(RapidAPIConfig{Key: "k", Host: "h", BaseURL: srv.URL, Now: fixedNow})
	res := r.FetchPosts(context.Background(), "x", 5)
	if res.OK || res.Reason != ReasonRateLimited || calls != 1 {
		t.Fatalf("res=%+v calls=%d", res, calls)
	}
}

func TestRapidAPI_EmptyAndMalformed(t *testing.T) {
	for name, body := range map[string]string{"empty": `{"timeline":[]}`, "malformed": `{"timeline":`} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()
			res := NewRapidAPI(RapidAPIConfig{Key: "k", Host: "h", BaseURL: srv.URL, Now: fixedNow}).FetchPosts(context.Background(), "x", 5)
			want := ReasonNoData
			if name == "malformed" {
				want = ReasonParse
			}
			if res.OK || res.Reason != want {
				t.Fatalf("result = %+v; want %s", res, want)
			}
		})
	}
}
