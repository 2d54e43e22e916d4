package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/ai-tracker/internal/domain"
)

// RapidAPIConfig configures the paid timeline API adapter.
type RapidAPIConfig struct {
	Key     string
	Host    string
	BaseURL string // defaults to https://{Host}
	Timeout time.Duration
	Window  time.Duration
	Client  *http.Client
	Now     func() time.Time
}

// RapidAPI fetches timelines from the paid twitter-api45 endpoint. A 429 is
// not retried: quota on this API is billed, so the handle is skipped.
type RapidAPI struct {
	cfg    RapidAPIConfig
	client client
}

// NewRapidAPI builds the paid API adapter.
func NewRapidAPI(cfg RapidAPIConfig) *RapidAPI {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.BaseURL == "" && cfg.Host != "" {
		cfg.BaseURL = "https://" + cfg.Host
	}
	return &RapidAPI{
		cfg: cfg,
		client: newClient(cfg.Client, cfg.Timeout, map[string]string{
			"x-rapidapi-key":  cfg.Key,
			"x-rapidapi-host": cfg.Host,
		}),
	}
}

func (r *RapidAPI) Name() domain.Source { return domain.SourcePaidAPI }

func (r *RapidAPI) Configured() bool { return r.cfg.Key != "" && r.cfg.BaseURL != "" }

type rapidTimeline struct {
	Timeline []rapidTweet `json:"timeline"`
}

type rapidTweet struct {
	TweetID       string     `json:"tweet_id"`
	ID            string     `json:"id"`
	Text          string     `json:"text"`
	FullText      string     `json:"full_text"`
	CreatedAt     string     `json:"created_at"`
	Favorites     flexInt    `json:"favorites"`
	FavoriteCount flexInt    `json:"favorite_count"`
	Retweets      flexInt    `json:"retweets"`
	Replies       flexInt    `json:"replies"`
	Views         flexInt    `json:"views"`
	Bookmarks     flexInt    `json:"bookmarks"`
	Quotes        flexInt    `json:"quotes"`
	URL           string     `json:"url"`
	Media         []rawMedia `json:"media"`
	Quoted        *struct {
		TweetID   string `json:"tweet_id"`
		IDStr     string `json:"id_str"`
		Text      string `json:"text"`
		CreatedAt string `json:"created_at"`
		Author    *struct {
			Name       string `json:"name"`
			ScreenName string `json:"screen_name"`
		} `json:"author"`
		Media []rawMedia `json:"media"`
	} `json:"quoted"`
}

func (r *RapidAPI) FetchPosts(ctx context.Context, handle string, max int) Result {
	if !r.Configured() {
		return Failure(ReasonNotConfigured, nil)
	}
	handle = domain.SanitizeHandle(handle)
	if handle == "" {
		return Failure(ReasonNoData, nil)
	}
	q := url.Values{"screenname": {handle}}
	body, _, err := r.client.get(ctx, r.cfg.BaseURL+"/timeline.php?"+q.Encode(), nil)
	if err != nil {
		reason := Classify(err)
		ev := log.Warn()
		if reason == ReasonRateLimited {
			ev = log.Info()
		}
		ev.Str("provider", string(r.Name())).Str("handle", handle).Str("reason", string(reason)).Err(err).Msg("paid api fetch skipped")
		return Failure(reason, err)
	}

	var doc rapidTimeline
	if err := json.Unmarshal(body, &doc); err != nil {
		return Failure(ReasonParse, parseError(err))
	}
	posts := make([]domain.Post, 0, len(doc.Timeline))
	for _, tw := range doc.Timeline {
		id := firstNonEmpty(tw.TweetID, tw.ID)
		at, ok := parseTime(tw.CreatedAt)
		if id == "" || !ok {
			continue
		}
		likes := tw.Favorites
		if likes == 0 {
			likes = tw.FavoriteCount
		}
		p := domain.Post{
			ID:        id,
			Text:      firstNonEmpty(tw.Text, tw.FullText),
			CreatedAt: at,
			Metrics: domain.Metrics{
				LikeCount:       int(likes),
				RepostCount:     int(tw.Retweets),
				ReplyCount:      int(tw.Replies),
				ImpressionCount: int(tw.Views),
				BookmarkCount:   int(tw.Bookmarks),
				QuoteCount:      int(tw.Quotes),
			},
			URL:    postURL(handle, id, tw.URL),
			Media:  convertMedia(tw.Media),
			Source: domain.SourcePaidAPI,
		}
		if qt := tw.Quoted; qt != nil && firstNonEmpty(qt.TweetID, qt.IDStr) != "" {
			p.QuotedPost = &domain.QuotedPost{
				ID:    firstNonEmpty(qt.TweetID, qt.IDStr),
				Text:  qt.Text,
				Media: convertMedia(qt.Media),
			}
			if qt.Author != nil {
				p.QuotedPost.AuthorName = qt.Author.Name
				p.QuotedPost.Handle = qt.Author.ScreenName
			}
			if qat, ok := parseTime(qt.CreatedAt); ok {
				p.QuotedPost.CreatedAt = qat
			}
		}
		posts = append(posts, p)
	}
	return Success(finalize(posts, r.cfg.Now(), r.cfg.Window, max))
}
