// Package inoreader implements the authenticated HTTP client for the
// Inoreader REST API: ClientLogin session handling, stream and subscription
// endpoints, and a short-lived cache for the subscription list.
package inoreader

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/samber/lo"

	"github.com/0x0BSoD/inoreader-mcp/internal/model"
)

const (
	defaultBaseURL     = "https://www.inoreader.com/reader/api/0"
	defaultAuthURL     = "https://www.inoreader.com/accounts/ClientLogin"
	defaultTimeout     = 10 * time.Second
	defaultCacheTTL    = 5 * time.Minute
	defaultMaxArticles = 50

	readTag       = "user/-/state/com.google/read"
	readingList   = "user/-/state/com.google/reading-list"
	searchStream  = "user/-/state/com.google/search"
	readTagSuffix = "/state/com.google/read"

	subscriptionsCacheKey = "subscription_list"
)

type Opts struct {
	AppID    string
	AppKey   string
	Username string
	Password string

	// BaseURL and AuthURL default to the public Inoreader endpoints.
	BaseURL string
	AuthURL string

	Timeout     time.Duration
	CacheTTL    time.Duration
	MaxArticles int
}

// Client is the Inoreader API client. The host issues one tool call at a
// time, so the session token and the cache slot are accessed sequentially and
// need no locking.
type Client struct {
	appID    string
	appKey   string
	username string
	password string

	baseURL     string
	authURL     string
	timeout     time.Duration
	maxArticles int

	http  *http.Client
	cache *gocache.Cache

	// token is empty until Authenticate succeeds and is cleared when the
	// upstream rejects the session.
	token string
}

func New(opts Opts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.AuthURL == "" {
		opts.AuthURL = defaultAuthURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.MaxArticles <= 0 {
		opts.MaxArticles = defaultMaxArticles
	}

	return &Client{
		appID:       opts.AppID,
		appKey:      opts.AppKey,
		username:    opts.Username,
		password:    opts.Password,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		authURL:     opts.AuthURL,
		timeout:     opts.Timeout,
		maxArticles: opts.MaxArticles,
		http:        &http.Client{Timeout: opts.Timeout},
		// cleanup interval 0: no janitor goroutine, expired entries are
		// dropped on access.
		cache: gocache.New(opts.CacheTTL, 0),
	}
}

// Authenticate exchanges the configured credentials for a session token.
// Failures are not retried; bad credentials stay bad.
func (c *Client) Authenticate(ctx context.Context) error {
	form := url.Values{
		"Email":  {c.username},
		"Passwd": {c.password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &AuthError{Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("AppId", c.appID)
	req.Header.Set("AppKey", c.appKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return c.transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return &AuthError{Status: resp.StatusCode, Reason: snippet(body)}
	}

	for _, line := range strings.Split(string(body), "\n") {
		if v, ok := strings.CutPrefix(line, "Auth="); ok && strings.TrimSpace(v) != "" {
			c.token = strings.TrimSpace(v)
			log.Printf("[INFO] authenticated as %s", c.username)
			return nil
		}
	}

	return &AuthError{Status: resp.StatusCode, Reason: "no auth token in response"}
}

// ListFeeds returns the subscribed feeds with unread counts merged in. The
// merged snapshot is cached; within the TTL no upstream request is made.
func (c *Client) ListFeeds(ctx context.Context) ([]model.Feed, error) {
	if cached, ok := c.cache.Get(subscriptionsCacheKey); ok {
		return cached.([]model.Feed), nil
	}

	var subs subscriptionList
	if err := c.getJSON(ctx, "subscription/list", nil, &subs); err != nil {
		return nil, err
	}

	var counts unreadCounts
	if err := c.getJSON(ctx, "unread-count", nil, &counts); err != nil {
		return nil, err
	}

	unread := make(map[string]int, len(counts.UnreadCounts))
	for _, uc := range counts.UnreadCounts {
		unread[uc.ID] = uc.Count
	}

	feeds := lo.Map(subs.Subscriptions, func(s subscription, _ int) model.Feed {
		return model.Feed{
			ID:      s.ID,
			Title:   s.Title,
			URL:     s.URL,
			HTMLURL: s.HTMLURL,
			Categories: lo.Map(s.Categories, func(cat subscriptionCategory, _ int) string {
				return cat.Label
			}),
			UnreadCount: unread[s.ID],
		}
	})

	c.cache.Set(subscriptionsCacheKey, feeds, gocache.DefaultExpiration)
	return feeds, nil
}

// ListArticles fetches articles from a single feed, or from the reading list
// when no feed is given. Limit is clamped to the configured maximum.
func (c *Client) ListArticles(ctx context.Context, f model.ArticleFilter) ([]model.Article, error) {
	stream := f.FeedID
	if stream == "" {
		stream = readingList
	}
	return c.streamContents(ctx, stream, "", f)
}

// SearchArticles runs a keyword query over the search stream. An empty query
// fails locally without touching the network.
func (c *Client) SearchArticles(ctx context.Context, query string, f model.ArticleFilter) ([]model.Article, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &ValidationError{Field: "query", Reason: "must not be empty"}
	}
	return c.streamContents(ctx, searchStream, query, f)
}

// GetArticle fetches the full content of one article.
func (c *Client) GetArticle(ctx context.Context, id string) (*model.Article, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &ValidationError{Field: "article_id", Reason: "must not be empty"}
	}

	articles, err := c.GetArticles(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, &NotFoundError{ID: id}
	}

	return &articles[0], nil
}

// GetArticles fetches full content for several articles in one call. Ids the
// upstream does not know are silently absent from the result.
func (c *Client) GetArticles(ctx context.Context, ids []string) ([]model.Article, error) {
	if len(ids) == 0 {
		return nil, &ValidationError{Field: "article_ids", Reason: "must not be empty"}
	}

	var sc streamContents
	if err := c.postJSON(ctx, "stream/items/contents", url.Values{"i": ids}, &sc); err != nil {
		return nil, err
	}

	return lo.Map(sc.Items, func(it streamItem, _ int) model.Article { return it.toModel() }), nil
}

// MarkRead marks articles as read, one edit-tag call per id. Best-effort:
// upstream failures for individual ids land in the result map instead of
// aborting the whole call.
func (c *Client) MarkRead(ctx context.Context, ids []string) (map[string]model.MarkResult, error) {
	if len(ids) == 0 {
		return nil, &ValidationError{Field: "article_ids", Reason: "must not be empty"}
	}

	results := make(map[string]model.MarkResult, len(ids))
	for _, id := range lo.Uniq(ids) {
		form := url.Values{
			"i": {id},
			"a": {readTag},
		}

		body, err := c.request(ctx, http.MethodPost, "edit-tag", nil, form)
		switch {
		case err != nil:
			results[id] = model.MarkResult{Err: err.Error()}
		case strings.TrimSpace(string(body)) != "OK":
			results[id] = model.MarkResult{Err: "unexpected upstream response: " + snippet(body)}
		default:
			results[id] = model.MarkResult{OK: true}
		}
	}

	return results, nil
}

// Statistics derives aggregate unread counts from the feed list; no separate
// upstream endpoint is involved beyond what ListFeeds already fetches.
func (c *Client) Statistics(ctx context.Context) (model.Stats, error) {
	feeds, err := c.ListFeeds(ctx)
	if err != nil {
		return model.Stats{}, err
	}

	withUnread := lo.Filter(feeds, func(f model.Feed, _ int) bool { return f.UnreadCount > 0 })
	sort.Slice(withUnread, func(i, j int) bool {
		return withUnread[i].UnreadCount > withUnread[j].UnreadCount
	})

	return model.Stats{
		TotalUnread:     lo.SumBy(feeds, func(f model.Feed) int { return f.UnreadCount }),
		FeedCount:       len(feeds),
		FeedsWithUnread: withUnread,
	}, nil
}

func (c *Client) streamContents(ctx context.Context, stream, query string, f model.ArticleFilter) ([]model.Article, error) {
	params := url.Values{}
	params.Set("n", strconv.Itoa(c.clampLimit(f.Limit)))
	params.Set("output", "json")
	if query != "" {
		params.Set("q", query)
	}
	if f.UnreadOnly {
		params.Set("xt", readTag)
	}
	if !f.Since.IsZero() {
		params.Set("ot", strconv.FormatInt(f.Since.Unix(), 10))
	}

	var sc streamContents
	if err := c.getJSON(ctx, "stream/contents/"+url.PathEscape(stream), params, &sc); err != nil {
		return nil, err
	}

	return lo.Map(sc.Items, func(it streamItem, _ int) model.Article { return it.toModel() }), nil
}

func (c *Client) clampLimit(limit int) int {
	if limit <= 0 || limit > c.maxArticles {
		return c.maxArticles
	}
	return limit
}

// request runs one authenticated call. A 401/403 marks the session expired
// and triggers exactly one re-authentication followed by one retry; if the
// re-authentication fails, the original rejection surfaces as an AuthError.
func (c *Client) request(ctx context.Context, method, path string, query, form url.Values) ([]byte, error) {
	if c.token == "" {
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := c.send(ctx, method, path, query, form)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		status := resp.StatusCode
		drain(resp)
		c.token = ""

		if err := c.Authenticate(ctx); err != nil {
			return nil, &AuthError{Status: status, Reason: "session rejected and re-authentication failed"}
		}

		if resp, err = c.send(ctx, method, path, query, form); err != nil {
			return nil, err
		}
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Status: resp.StatusCode, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{Status: resp.StatusCode, Reason: snippet(body)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &UpstreamError{Status: resp.StatusCode, Body: snippet(body)}
	}

	return body, nil
}

func (c *Client) send(ctx context.Context, method, path string, query, form url.Values) (*http.Response, error) {
	u := c.baseURL + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if len(form) > 0 {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	if len(form) > 0 {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Authorization", "GoogleLogin auth="+c.token)
	req.Header.Set("AppId", c.appID)
	req.Header.Set("AppKey", c.appKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(err)
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.request(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return parseJSON(body, out)
}

func (c *Client) postJSON(ctx context.Context, path string, form url.Values, out any) error {
	body, err := c.request(ctx, http.MethodPost, path, nil, form)
	if err != nil {
		return err
	}
	return parseJSON(body, out)
}

func (c *Client) transportError(err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &TimeoutError{After: c.timeout, Err: err}
	}
	return &UpstreamError{Err: err}
}

func parseJSON(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{Status: http.StatusOK, Body: snippet(body), Err: err}
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
