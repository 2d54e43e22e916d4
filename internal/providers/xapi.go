package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/tbourn/ai-tracker/internal/domain"
)

// XAPIConfig configures the official X API v2 adapter.
type XAPIConfig struct {
	BearerToken string
	BaseURL     string // e.g. https://api.twitter.com/2
	Timeout     time.Duration
	Window      time.Duration
	BatchSize   int           // handles per batch
	BatchDelay  time.Duration // pause between batches
	Client      *http.Client  // overrides the oauth2 client (tests)
	Now         func() time.Time
}

// XAPI is the official API, used as a catalog-wide last resort. It resolves
// each handle to a user id, then lists that user's posts within the window.
type XAPI struct {
	cfg    XAPIConfig
	client client
}

// NewXAPI builds the official API adapter. Authentication uses an app-only
// bearer token carried by an oauth2 transport.
func NewXAPI(cfg XAPIConfig) *XAPI {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	hc := cfg.Client
	if hc == nil && cfg.BearerToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.BearerToken, TokenType: "Bearer"})
		hc = oauth2.NewClient(context.Background(), ts)
		hc.Timeout = cfg.Timeout
	}
	return &XAPI{cfg: cfg, client: newClient(hc, cfg.Timeout, nil)}
}

func (x *XAPI) Name() domain.Source { return domain.SourceOfficialAPI }

func (x *XAPI) Configured() bool { return x.cfg.BearerToken != "" && x.cfg.BaseURL != "" }

type xUserResponse struct {
	Data *struct {
		ID string `json:"id"`
	} `json:"data"`
}

type xTweetsResponse struct {
	Data []struct {
		ID            string `json:"id"`
		Text          string `json:"text"`
		CreatedAt     string `json:"created_at"`
		PublicMetrics struct {
			LikeCount       int `json:"like_count"`
			RetweetCount    int `json:"retweet_count"`
			ReplyCount      int `json:"reply_count"`
			QuoteCount      int `json:"quote_count"`
			BookmarkCount   int `json:"bookmark_count"`
			ImpressionCount int `json:"impression_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

// FetchPosts resolves the handle and lists its recent posts.
func (x *XAPI) FetchPosts(ctx context.Context, handle string, max int) Result {
	if !x.Configured() {
		return Failure(ReasonNotConfigured, nil)
	}
	handle = domain.SanitizeHandle(handle)
	body, _, err := x.client.get(ctx, x.cfg.BaseURL+"/users/by/username/"+url.PathEscape(handle), nil)
	if err != nil {
		return Failure(ReasonNone, err)
	}
	var user xUserResponse
	if err := json.Unmarshal(body, &user); err != nil {
		return Failure(ReasonParse, parseError(err))
	}
	if user.Data == nil || user.Data.ID == "" {
		return Failure(ReasonNoData, nil)
	}

	now := x.cfg.Now()
	q := url.Values{
		"tweet.fields": {"created_at,public_metrics"},
		"exclude":      {"retweets,replies"},
		// the endpoint accepts 5..100
		"max_results": {strconv.Itoa(clampInt(max, 5, 100))},
	}
	if x.cfg.Window > 0 {
		q.Set("start_time", now.Add(-x.cfg.Window).UTC().Format(time.RFC3339))
	}
	body, _, err = x.client.get(ctx, fmt.Sprintf("%s/users/%s/tweets?%s", x.cfg.BaseURL, user.Data.ID, q.Encode()), nil)
	if err != nil {
		return Failure(ReasonNone, err)
	}
	var tweets xTweetsResponse
	if err := json.Unmarshal(body, &tweets); err != nil {
		return Failure(ReasonParse, parseError(err))
	}
	posts := make([]domain.Post, 0, len(tweets.Data))
	for _, tw := range tweets.Data {
		at, ok := parseTime(tw.CreatedAt)
		if !ok {
			continue
		}
		m := tw.PublicMetrics
		posts = append(posts, domain.Post{
			ID:        tw.ID,
			Text:      tw.Text,
			CreatedAt: at,
			Metrics: domain.Metrics{
				LikeCount:       m.LikeCount,
				RepostCount:     m.RetweetCount,
				ReplyCount:      m.ReplyCount,
				ImpressionCount: m.ImpressionCount,
				BookmarkCount:   m.BookmarkCount,
				QuoteCount:      m.QuoteCount,
			},
			URL:    postURL(handle, tw.ID, ""),
			Source: domain.SourceOfficialAPI,
		})
	}
	return Success(finalize(posts, now, x.cfg.Window, max))
}

// FetchAll fetches every distinct handle of tools in sequential batches and
// fans posts out to the tools sharing a handle. Tools without posts are
// dropped. A rate limit stops the run early and returns what was gathered.
func (x *XAPI) FetchAll(ctx context.Context, tools []domain.Tool, maxPerTool int) BulkResult {
	if !x.Configured() {
		return BulkResult{Reason: ReasonNotConfigured}
	}
	type group struct {
		handle string
		tools  []domain.Tool
	}
	var groups []group
	pos := map[string]int{}
	for _, t := range tools {
		h := domain.SanitizeHandle(t.Handle)
		if h == "" {
			continue
		}
		i, ok := pos[strings.ToLower(h)]
		if !ok {
			i = len(groups)
			pos[strings.ToLower(h)] = i
			groups = append(groups, group{handle: h})
		}
		groups[i].tools = append(groups[i].tools, t)
	}

	out := make([]domain.ToolWithPosts, 0)
	var lastReason Reason = ReasonNoData
	var lastErr error
	for i, g := range groups {
		if i > 0 && i%x.cfg.BatchSize == 0 && !sleep(ctx, x.cfg.BatchDelay) {
			lastReason, lastErr = ReasonTimeout, ctx.Err()
			break
		}
		res := x.FetchPosts(ctx, g.handle, maxPerTool)
		if !res.OK {
			lastReason, lastErr = res.Reason, res.Err
			if res.Reason == ReasonRateLimited || res.Reason == ReasonTimeout {
				log.Warn().Str("provider", string(x.Name())).Str("reason", string(res.Reason)).Msg("official api bulk stopped early")
				break
			}
			continue
		}
		for _, t := range g.tools {
			tw := domain.ToolWithPosts{Tool: t, Posts: append([]domain.Post(nil), res.Posts...)}
			tw.Normalize()
			out = append(out, tw)
		}
	}
	if len(out) == 0 {
		return BulkResult{Reason: lastReason, Err: lastErr}
	}
	return BulkResult{Tools: out}
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
