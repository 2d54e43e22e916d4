package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/tbourn/ai-tracker/internal/domain"
)

// SyndicationConfig configures the public timeline scrape adapter.
type SyndicationConfig struct {
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration // per HTTP request
	Window      time.Duration
	MaxAttempts int
	MaxWait     time.Duration
	Client      *http.Client
	Now         func() time.Time
}

// Syndication scrapes the embedded-timeline page, which carries the
// profile's recent posts as JSON in its __NEXT_DATA__ script. No credentials
// are needed; the upstream signals quota through x-rate-limit-* headers.
type Syndication struct {
	cfg    SyndicationConfig
	client client
	limits *RateLimitState
	policy RetryPolicy
}

// NewSyndication builds the scrape adapter.
func NewSyndication(cfg SyndicationConfig) *Syndication {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	policy := DefaultRetryPolicy()
	policy.RetryableStatus = []int{http.StatusTooManyRequests}
	if cfg.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.MaxWait > 0 {
		policy.MaxWait = cfg.MaxWait
	}
	return &Syndication{
		cfg: cfg,
		client: newClient(cfg.Client, cfg.Timeout, map[string]string{
			"User-Agent": cfg.UserAgent,
			"Accept":     "text/html,application/xhtml+xml",
		}),
		limits: NewRateLimitState(),
		policy: policy,
	}
}

func (s *Syndication) Name() domain.Source { return domain.SourceScrape }

func (s *Syndication) Configured() bool { return s.cfg.BaseURL != "" }

// Cooldown reports the pending wait recorded from the last quota headers.
func (s *Syndication) Cooldown(now time.Time) time.Duration { return s.limits.Cooldown(now) }

// RateLimit exposes the last recorded quota.
func (s *Syndication) RateLimit() RateLimit { return s.limits.Snapshot() }

func (s *Syndication) FetchPosts(ctx context.Context, handle string, max int) Result {
	handle = domain.SanitizeHandle(handle)
	if handle == "" {
		return Failure(ReasonNoData, nil)
	}
	target := s.cfg.BaseURL + "/" + url.PathEscape(handle)

	var body []byte
	err := Retry(ctx, s.policy, "syndication:"+handle, func(ctx context.Context) error {
		b, hdr, err := s.client.get(ctx, target, nil)
		s.limits.Update(hdr)
		var herr *HTTPError
		if errors.As(err, &herr) && herr.StatusCode == http.StatusTooManyRequests {
			herr.RetryAfter = s.limits.RetryAfter(s.cfg.Now())
		}
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		log.Warn().Str("provider", string(s.Name())).Str("handle", handle).Err(err).Msg("syndication fetch failed")
		return Failure(ReasonNone, err)
	}

	posts, err := parseSyndication(body, handle)
	if err != nil {
		log.Warn().Str("provider", string(s.Name())).Str("handle", handle).Err(err).Msg("syndication parse failed")
		return Failure(ReasonParse, err)
	}
	return Success(finalize(posts, s.cfg.Now(), s.cfg.Window, max))
}

// nextDataJSON returns the text of <script id="__NEXT_DATA__">.
func nextDataJSON(page []byte) ([]byte, bool) {
	z := html.NewTokenizer(bytes.NewReader(page))
	inTarget := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return nil, false
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "script" || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "id" && string(val) == "__NEXT_DATA__" {
					inTarget = true
					break
				}
				if !more {
					break
				}
			}
		case html.TextToken:
			if inTarget {
				return bytes.TrimSpace(z.Text()), true
			}
		case html.EndTagToken:
			if inTarget {
				return nil, false
			}
		}
	}
}

type syndicationPage struct {
	Props struct {
		PageProps struct {
			Timeline struct {
				Entries []struct {
					Type    string `json:"type"`
					Content struct {
						Tweet *syndicationTweet `json:"tweet"`
					} `json:"content"`
				} `json:"entries"`
			} `json:"timeline"`
		} `json:"pageProps"`
	} `json:"props"`
}

type syndicationTweet struct {
	IDStr             string  `json:"id_str"`
	ConversationIDStr string  `json:"conversation_id_str"`
	FullText          string  `json:"full_text"`
	Text              string  `json:"text"`
	CreatedAt         string  `json:"created_at"`
	FavoriteCount     flexInt `json:"favorite_count"`
	RetweetCount      flexInt `json:"retweet_count"`
	ReplyCount        flexInt `json:"reply_count"`
	QuoteCount        flexInt `json:"quote_count"`
	BookmarkCount     flexInt `json:"bookmark_count"`
	ViewCount         flexInt `json:"view_count"`
	Permalink         string  `json:"permalink"`
	User              *struct {
		Name       string `json:"name"`
		ScreenName string `json:"screen_name"`
	} `json:"user"`
	Entities         *struct{ Media []rawMedia } `json:"entities"`
	ExtendedEntities *struct{ Media []rawMedia } `json:"extended_entities"`
	QuotedStatus     *syndicationTweet           `json:"quoted_status"`
	Quote            *syndicationTweet           `json:"quote"`
}

func (t *syndicationTweet) id() string { return firstNonEmpty(t.IDStr, t.ConversationIDStr) }

func (t *syndicationTweet) media() []domain.Media {
	if t.ExtendedEntities != nil && len(t.ExtendedEntities.Media) > 0 {
		return convertMedia(t.ExtendedEntities.Media)
	}
	if t.Entities != nil {
		return convertMedia(t.Entities.Media)
	}
	return nil
}

func (t *syndicationTweet) quoted() *domain.QuotedPost {
	q := t.QuotedStatus
	if q == nil {
		q = t.Quote
	}
	if q == nil || q.id() == "" {
		return nil
	}
	out := &domain.QuotedPost{
		ID:    q.id(),
		Text:  firstNonEmpty(q.FullText, q.Text),
		Media: q.media(),
	}
	if q.User != nil {
		out.AuthorName = q.User.Name
		out.Handle = q.User.ScreenName
	}
	if at, ok := parseTime(q.CreatedAt); ok {
		out.CreatedAt = at
	}
	if q.Permalink != "" {
		out.URL = postURL(out.Handle, out.ID, q.Permalink)
	}
	return out
}

// parseSyndication extracts posts from a timeline page. Entries without an id
// or a parsable timestamp are skipped.
func parseSyndication(page []byte, handle string) ([]domain.Post, error) {
	raw, ok := nextDataJSON(page)
	if !ok {
		return nil, parseError(errors.New("__NEXT_DATA__ not found"))
	}
	var doc syndicationPage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, parseError(err)
	}
	out := make([]domain.Post, 0)
	for _, e := range doc.Props.PageProps.Timeline.Entries {
		if e.Type != "tweet" || e.Content.Tweet == nil {
			continue
		}
		tw := e.Content.Tweet
		id := tw.id()
		at, ok := parseTime(tw.CreatedAt)
		if id == "" || !ok {
			continue
		}
		out = append(out, domain.Post{
			ID:        id,
			Text:      firstNonEmpty(tw.FullText, tw.Text),
			CreatedAt: at,
			Metrics: domain.Metrics{
				LikeCount:       int(tw.FavoriteCount),
				RepostCount:     int(tw.RetweetCount),
				ReplyCount:      int(tw.ReplyCount),
				ImpressionCount: int(tw.ViewCount),
				BookmarkCount:   int(tw.BookmarkCount),
				QuoteCount:      int(tw.QuoteCount),
			},
			URL:        postURL(handle, id, tw.Permalink),
			Media:      tw.media(),
			QuotedPost: tw.quoted(),
			Source:     domain.SourceScrape,
		})
	}
	return out, nil
}
