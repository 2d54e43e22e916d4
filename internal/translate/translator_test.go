package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/tbourn/ai-tracker/internal/domain"
)

// fakeLLM answers numbered batches by prefixing each item with "TR:".
type fakeLLM struct {
	mu    sync.Mutex
	calls []string
	err   error
	reply func(user string) string
}

func (f *fakeLLM) Complete(_ context.Context, _, user string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, user)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if f.reply != nil {
		return f.reply(user), nil
	}
	parts := strings.Split(user, separator)
	for i, p := range parts {
		parts[i] = fmt.Sprintf("[%d] TR:%s", i+1, numberPrefix.ReplaceAllString(p, ""))
	}
	return strings.Join(parts, separator), nil
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestNew_TargetDefaultsToTurkish(t *testing.T) {
	if got := New(nil, Options{}).Target(); got != language.Turkish {
		t.Fatalf("default target = %v", got)
	}
	if got := New(nil, Options{Target: language.German}).Target(); got != language.German {
		t.Fatalf("explicit target = %v", got)
	}
}

func TestTranslateBatch_Unconfigured_IsIdentity(t *testing.T) {
	s := New(nil, Options{})
	in := []string{"hello", "world"}
	got := s.TranslateBatch(context.Background(), in)
	if s.Configured() || strings.Join(got, ",") != "hello,world" {
		t.Fatalf("got %v", got)
	}
}

func TestTranslateBatch_PreservesOrderAndMemoizes(t *testing.T) {
	llm := &fakeLLM{}
	s := New(llm, Options{Target: language.Turkish})
	in := []string{"hello", "", "Bu bir güzel gün ve hava açık", "world"}
	got := s.TranslateBatch(context.Background(), in)
	want := []string{"TR:hello", "", "Bu bir güzel gün ve hava açık", "TR:world"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %q; want %q", i, got[i], want[i])
		}
	}
	if llm.callCount() != 1 || !strings.HasPrefix(llm.calls[0], "[1] hello"+separator+"[2] world") {
		t.Fatalf("calls = %q", llm.calls)
	}

	again := s.TranslateBatch(context.Background(), []string{"world", "hello"})
	if again[0] != "TR:world" || again[1] != "TR:hello" || llm.callCount() != 1 {
		t.Fatalf("memo miss: %v calls=%d", again, llm.callCount())
	}
	if s.MemoSize() != 2 {
		t.Fatalf("memo size = %d", s.MemoSize())
	}
	s.Clear()
	if s.MemoSize() != 0 {
		t.Fatalf("Clear did not empty memo")
	}
}

func TestTranslateBatch_FailurePassesThrough(t *testing.T) {
	s := New(&fakeLLM{err: errors.New("boom")}, Options{})
	got := s.TranslateBatch(context.Background(), []string{"a", "b"})
	if got[0] != "a" || got[1] != "b" || s.MemoSize() != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestTranslateBatch_PartialResponse(t *testing.T) {
	llm := &fakeLLM{reply: func(string) string { return "[1] bir" }}
	s := New(llm, Options{})
	got := s.TranslateBatch(context.Background(), []string{"one", "two"})
	if got[0] != "bir" || got[1] != "two" {
		t.Fatalf("got %v", got)
	}
	if s.MemoSize() != 1 {
		t.Fatalf("only parsed items should be memoized, size=%d", s.MemoSize())
	}
}

func TestTranslateTools_SetsOriginalTextAndKeepsInput(t *testing.T) {
	at := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	tools := make([]domain.ToolWithPosts, 5)
	for i := range tools {
		tools[i] = domain.ToolWithPosts{
			Tool:  domain.Tool{ID: fmt.Sprintf("t%d", i)},
			Posts: []domain.Post{{ID: "p", Text: fmt.Sprintf("text %d", i), CreatedAt: at}},
		}
	}
	llm := &fakeLLM{}
	s := New(llm, Options{Parallel: 2, GroupDelay: time.Millisecond})
	out := s.TranslateTools(context.Background(), tools)
	if len(out) != 5 || llm.callCount() != 5 {
		t.Fatalf("len=%d calls=%d", len(out), llm.callCount())
	}
	for i, tw := range out {
		p := tw.Posts[0]
		if p.Text != fmt.Sprintf("TR:text %d", i) || p.OriginalText != fmt.Sprintf("text %d", i) {
			t.Fatalf("post %d = %+v", i, p)
		}
		if tw.LatestPost == nil || tw.LatestPost.Text != p.Text {
			t.Fatalf("latest post not refreshed: %+v", tw.LatestPost)
		}
	}
	if tools[0].Posts[0].Text != "text 0" {
		t.Fatalf("input mutated: %+v", tools[0].Posts[0])
	}
}

func TestProfile_Matches(t *testing.T) {
	tr := profileFor(language.Turkish)
	cases := []struct {
		text string
		want bool
	}{
		{"Yeni model için harika bir güncelleme", true},
		{"BU GÜNCELLEME ÇOK İYİ", true}, // locale-aware lowercasing
		{"Şimdi yayında", false},        // letters but no function word
		{"This is a new model and it is fast", false},
	}
	for _, tc := range cases {
		if got := tr.matches(tc.text); got != tc.want {
			t.Fatalf("matches(%q) = %v; want %v", tc.text, got, tc.want)
		}
	}
	if profileFor(language.Japanese) != nil {
		t.Fatalf("no profile expected for ja")
	}
	var none *profile
	if none.matches("anything") {
		t.Fatalf("nil profile should never match")
	}
}

func TestDeepSeek_Complete(t *testing.T) {
	var auth, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  merhaba  "}}]}`))
	}))
	defer srv.Close()

	d := NewDeepSeek(DeepSeekConfig{APIKey: "k", URL: srv.URL})
	got, err := d.Complete(context.Background(), "sys", "hello")
	if err != nil || got != "merhaba" {
		t.Fatalf("Complete = %q, %v", got, err)
	}
	if auth != "Bearer k" || !strings.Contains(body, `"model":"deepseek-chat"`) || !strings.Contains(body, `"temperature":0.3`) {
		t.Fatalf("request auth=%q body=%s", auth, body)
	}
}

func TestDeepSeek_Errors(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"status":     {http.StatusUnauthorized, `{"error":{"message":"bad key"}}`},
		"api error":  {http.StatusOK, `{"error":{"message":"overloaded"}}`},
		"no choices": {http.StatusOK, `{"choices":[]}`},
		"garbage":    {http.StatusOK, `not json`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()
			if _, err := NewDeepSeek(DeepSeekConfig{APIKey: "k", URL: srv.URL}).Complete(context.Background(), "s", "u"); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
