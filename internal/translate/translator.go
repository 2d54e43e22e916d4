// Package translate rewrites post text into a target language through a chat
// model. Translation is best-effort: any failure passes the original text
// through unchanged, and results are memoized by exact source text.
package translate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/tbourn/ai-tracker/internal/domain"
)

const separator = "\n---\n"

var numberPrefix = regexp.MustCompile(`^\[\d+\]\s*`)

// Options configures a Service.
type Options struct {
	Target      language.Tag
	Parallel    int           // tools translated concurrently
	GroupDelay  time.Duration // pause between groups of tools
	CallTimeout time.Duration // per batch call
}

// Service translates posts. A Service without a Completer is a passthrough.
type Service struct {
	llm     Completer
	opts    Options
	profile *profile

	mu   sync.RWMutex
	memo map[string]string
}

// New builds a Service. llm may be nil to disable translation.
func New(llm Completer, opts Options) *Service {
	if opts.Target == (language.Tag{}) {
		opts.Target = language.Turkish
	}
	if opts.Parallel <= 0 {
		opts.Parallel = 3
	}
	if opts.GroupDelay < 0 {
		opts.GroupDelay = 0
	}
	return &Service{
		llm:     llm,
		opts:    opts,
		profile: profileFor(opts.Target),
		memo:    map[string]string{},
	}
}

// Configured reports whether a model is attached.
func (s *Service) Configured() bool { return s != nil && s.llm != nil }

// Target is the output language.
func (s *Service) Target() language.Tag { return s.opts.Target }

// Clear drops every memoized translation.
func (s *Service) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.memo = map[string]string{}
	s.mu.Unlock()
}

// MemoSize is the number of memoized translations.
func (s *Service) MemoSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.memo)
}

// TranslateBatch returns texts translated in order. Memo hits, blank
// strings and text already in the target language skip the model; the
// remainder goes out as one numbered request. Unparsed items keep their
// original text.
func (s *Service) TranslateBatch(ctx context.Context, texts []string) []string {
	out := append([]string(nil), texts...)
	if !s.Configured() || len(texts) == 0 {
		return out
	}

	var pending []int
	s.mu.RLock()
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		if hit, ok := s.memo[t]; ok {
			out[i] = hit
			continue
		}
		if s.profile.matches(t) {
			continue
		}
		pending = append(pending, i)
	}
	s.mu.RUnlock()
	if len(pending) == 0 {
		return out
	}

	numbered := make([]string, len(pending))
	for n, i := range pending {
		numbered[n] = fmt.Sprintf("[%d] %s", n+1, texts[i])
	}
	if s.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.CallTimeout)
		defer cancel()
	}
	resp, err := s.llm.Complete(ctx, s.systemPrompt(), strings.Join(numbered, separator))
	if err != nil {
		log.Warn().Str("component", "translate").Int("texts", len(pending)).Err(err).Msg("translation failed, keeping originals")
		return out
	}

	parts := strings.Split(resp, separator)
	s.mu.Lock()
	defer s.mu.Unlock()
	for n, part := range parts {
		if n >= len(pending) {
			break
		}
		cleaned := strings.TrimSpace(numberPrefix.ReplaceAllString(strings.TrimSpace(part), ""))
		if cleaned == "" {
			continue
		}
		i := pending[n]
		out[i] = cleaned
		s.memo[texts[i]] = cleaned
	}
	return out
}

// TranslatePosts returns copies of posts with translated text. Posts whose
// text changed keep the source in OriginalText.
func (s *Service) TranslatePosts(ctx context.Context, posts []domain.Post) []domain.Post {
	out := append([]domain.Post(nil), posts...)
	if !s.Configured() || len(posts) == 0 {
		return out
	}
	texts := make([]string, len(posts))
	for i, p := range posts {
		texts[i] = p.Text
	}
	translated := s.TranslateBatch(ctx, texts)
	for i := range out {
		if translated[i] != "" && translated[i] != out[i].Text {
			if out[i].OriginalText == "" {
				out[i].OriginalText = out[i].Text
			}
			out[i].Text = translated[i]
		}
	}
	return out
}

// TranslateTools translates every tool's posts, Parallel tools at a time with
// GroupDelay between groups. The input slice is not modified.
func (s *Service) TranslateTools(ctx context.Context, tools []domain.ToolWithPosts) []domain.ToolWithPosts {
	out := append([]domain.ToolWithPosts(nil), tools...)
	if !s.Configured() {
		return out
	}
	for start := 0; start < len(out); start += s.opts.Parallel {
		if start > 0 && s.opts.GroupDelay > 0 {
			select {
			case <-ctx.Done():
				return out
			case <-time.After(s.opts.GroupDelay):
			}
		}
		end := min(start+s.opts.Parallel, len(out))
		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				out[i].Posts = s.TranslatePosts(ctx, out[i].Posts)
				out[i].Normalize()
				return nil
			})
		}
		_ = g.Wait()
	}
	return out
}

func (s *Service) systemPrompt() string {
	name := display.English.Languages().Name(s.opts.Target)
	if name == "" {
		name = s.opts.Target.String()
	}
	return "You are a translation assistant. You receive numbered texts separated by lines containing only ---. " +
		"Translate each into " + name + " and answer in the same numbered format: [1] translation" + separator + "[2] translation. " +
		"Keep emoji, hashtags, mentions and links. Do not translate brand names or technical terms such as AI, API, LLM, GPU or token. " +
		"If a text is already in " + name + ", return it unchanged."
}
