package inoreader

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x0BSoD/inoreader-mcp/internal/model"
)

func newTestClient(t *testing.T, mux *http.ServeMux, opts Opts) *Client {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	if opts.AppID == "" {
		opts.AppID = "app-id"
	}
	if opts.AppKey == "" {
		opts.AppKey = "app-key"
	}
	if opts.Username == "" {
		opts.Username = "user@example.com"
	}
	if opts.Password == "" {
		opts.Password = "secret"
	}
	opts.BaseURL = srv.URL + "/reader/api/0"
	opts.AuthURL = srv.URL + "/accounts/ClientLogin"

	return New(opts)
}

func authOK(calls *int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		*calls++
		fmt.Fprint(w, "SID=sid\nLSID=lsid\nAuth=token-123\n")
	}
}

func TestAuthenticate(t *testing.T) {
	var authCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/ClientLogin", func(w http.ResponseWriter, r *http.Request) {
		authCalls++
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "user@example.com", r.PostForm.Get("Email"))
		assert.Equal(t, "secret", r.PostForm.Get("Passwd"))
		assert.Equal(t, "app-id", r.Header.Get("AppId"))
		assert.Equal(t, "app-key", r.Header.Get("AppKey"))
		fmt.Fprint(w, "SID=sid\nLSID=lsid\nAuth=token-123\n")
	})

	client := newTestClient(t, mux, Opts{})
	require.NoError(t, client.Authenticate(context.Background()))
	assert.Equal(t, 1, authCalls)
	assert.Equal(t, "token-123", client.token)
}

func TestAuthenticateBadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/ClientLogin", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Error=BadAuthentication", http.StatusForbidden)
	})

	client := newTestClient(t, mux, Opts{})
	err := client.Authenticate(context.Background())

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusForbidden, authErr.Status)
}

func TestListFeedsCaching(t *testing.T) {
	var authCalls, subsCalls, unreadCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/ClientLogin", authOK(&authCalls))
	mux.HandleFunc("/reader/api/0/subscription/list", func(w http.ResponseWriter, _ *http.Request) {
		subsCalls++
		fmt.Fprint(w, `{"subscriptions":[
			{"id":"feed/http://a.example/rss","title":"Feed A","url":"http://a.example/rss","categories":[{"id":"user/1/label/Tech","label":"Tech"}]},
			{"id":"feed/http://b.example/rss","title":"Feed B","url":"http://b.example/rss"}
		]}`)
	})
	mux.HandleFunc("/reader/api/0/unread-count", func(w http.ResponseWriter, _ *http.Request) {
		unreadCalls++
		fmt.Fprint(w, `{"unreadcounts":[
			{"id":"feed/http://a.example/rss","count":3},
			{"id":"user/1/state/com.google/reading-list","count":3}
		]}`)
	})

	client := newTestClient(t, mux, Opts{CacheTTL: 100 * time.Millisecond})
	ctx := context.Background()

	feeds, err := client.ListFeeds(ctx)
	require.NoError(t, err)
	require.Len(t, feeds, 2)
	assert.Equal(t, 3, feeds[0].UnreadCount)
	assert.Equal(t, []string{"Tech"}, feeds[0].Categories)
	assert.Equal(t, 0, feeds[1].UnreadCount)

	// second call within the TTL is served from the cache
	_, err = client.ListFeeds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, subsCalls)
	assert.Equal(t, 1, unreadCalls)

	time.Sleep(150 * time.Millisecond)

	_, err = client.ListFeeds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, subsCalls)
	assert.Equal(t, 2, unreadCalls)
}

func TestListArticlesClampsLimit(t *testing.T) {
	var authCalls int
	var gotN string
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/ClientLogin", authOK(&authCalls))
	mux.HandleFunc("/reader/api/0/stream/contents/", func(w http.ResponseWriter, r *http.Request) {
		gotN = r.URL.Query().Get("n")
		fmt.Fprint(w, `{"items":[]}`)
	})

	client := newTestClient(t, mux, Opts{})
	ctx := context.Background()

	_, err := client.ListArticles(ctx, model.ArticleFilter{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, "50", gotN)

	_, err = client.ListArticles(ctx, model.ArticleFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "10", gotN)

	_, err = client.ListArticles(ctx, model.ArticleFilter{})
	require.NoError(t, err)
	assert.Equal(t, "50", gotN)
}

func TestListArticlesFilterParams(t *testing.T) {
	var authCalls int
	var gotQuery map[string][]string
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/ClientLogin", authOK(&authCalls))
	mux.HandleFunc("/reader/api/0/stream/contents/", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprint(w, `{"items":[]}`)
	})

	client := newTestClient(t, mux, Opts{})
	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	_, err := client.ListArticles(context.Background(), model.ArticleFilter{
		FeedID:     "feed/http://a.example/rss",
		UnreadOnly: true,
		Since:      since,
		Limit:      5,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"user/-/state/com.google/read"}, gotQuery["xt"])
	assert.Equal(t, []string{fmt.Sprint(since.Unix())}, gotQuery["ot"])
	assert.Equal(t, []string{"5"}, gotQuery["n"])
}

func TestSearchEmptyQueryIssuesNoRequest(t *testing.T) {
	var hits int
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		hits++
		http.Error(w, "unexpected request", http.StatusInternalServerError)
	})

	client := newTestClient(t, mux, Opts{})
	_, err := client.SearchArticles(context.Background(), "   ", model.ArticleFilter{})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, 0, hits)
}

func TestSearchPassesQuery(t *testing.T) {
	var authCalls int
	var gotQ string
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/ClientLogin", authOK(&authCalls))
	mux.HandleFunc("/reader/api/0/stream/contents/", func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		fmt.Fprint(w, `{"items":[]}`)
	})

	client := newTestClient(t, mux, Opts{})
	_, err := client.SearchArticles(context.Background(), "golang", model.ArticleFilter{})
	require.NoError(t, err)
	assert.Equal(t, "golang", gotQ)
}

func TestGetArticleMapsFields(t *testing.T) {
	var authCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/ClientLogin", authOK(&authCalls))
	mux.HandleFunc("/reader/api/0/stream/items/contents", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "item-1", r.PostForm.Get("i"))
		fmt.Fprint(w, `{"items":[{
			"id":"item-1",
			"title":"Hello",
			"author":"Ann",
			"published":1756300000,
			"categories":["user/1/state/com.google/reading-list","user/1/state/com.google/read"],
			"origin":{"streamId":"feed/http://a.example/rss","title":"Feed A"},
			"alternate":[{"href":"http://a.example/hello","type":"text/html"}],
			"summary":{"content":"<p>short</p>"},
			"content":{"content":"<p>full body</p>"}
		}]}`)
	})

	client := newTestClient(t, mux, Opts{})
	article, err := client.GetArticle(context.Background(), "item-1")
	require.NoError(t, err)

	assert.Equal(t, "Hello", article.Title)
	assert.Equal(t, "Feed A", article.FeedTitle)
	assert.Equal(t, "http://a.example/hello", article.URL)
	assert.True(t, article.Read)
	assert.Equal(t, "<p>full body</p>", article.Content)
	assert.Equal(t, time.Unix(1756300000, 0).UTC(), article.Published)
}

func TestGetArticleUnreadFlag(t *testing.T) {
	var authCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/ClientLogin", authOK(&authCalls))
	mux.HandleFunc("/reader/api/0/stream/items/contents", func(w http.ResponseWriter, _ *http.Request) {
		// reading-list alone must not count as read
		fmt.Fprint(w, `{"items":[{"id":"item-2","title":"T","categories":["user/1/state/com.google/reading-list"]}]}`)
	})

	client := newTestClient(t, mux, Opts{})
	article, err := client.GetArticle(context.Background(), "item-2")
	require.NoError(t, err)
	assert.False(t, article.Read)
}

func TestGetArticleNotFound(t *testing.T) {
	var authCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/ClientLogin", authOK(&authCalls))
	mux.HandleFunc("/reader/api/0/stream/items/contents", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"items":[]}`)
	})

	client := newTestClient(t, mux, Opts{})
	_, err := client.GetArticle(context.Background(), "missing")

	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "missing", notFoundErr.ID)
}

func TestMarkReadPartialFailure(t *testing.T) {
	var authCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/ClientLogin", authOK(&authCalls))
	mux.HandleFunc("/reader/api/0/edit-tag", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("i") == "bad" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "OK")
	})

	client := newTestClient(t, mux, Opts{})
	results, err := client.MarkRead(context.Background(), []string{"good", "bad"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results["good"].OK)
	assert.False(t, results["bad"].OK)
	assert.Contains(t, results["bad"].Err, "500")
}

func TestMarkReadEmptyIDs(t *testing.T) {
	client := newTestClient(t, http.NewServeMux(), Opts{})
	_, err := client.MarkRead(context.Background(), nil)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestReauthenticatesOnceOnRejection(t *testing.T) {
	var authCalls, streamCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/ClientLogin", authOK(&authCalls))
	mux.HandleFunc("/reader/api/0/stream/contents/", func(w http.ResponseWriter, _ *http.Request) {
		streamCalls++
		if streamCalls == 1 {
			http.Error(w, "token expired", http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"items":[]}`)
	})

	client := newTestClient(t, mux, Opts{})
	_, err := client.ListArticles(context.Background(), model.ArticleFilter{})
	require.NoError(t, err)

	assert.Equal(t, 2, authCalls, "lazy auth plus one re-auth")
	assert.Equal(t, 2, streamCalls, "original call plus one retry")
}

func TestReauthFailureSurfacesAuthError(t *testing.T) {
	var authCalls, streamCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/ClientLogin", func(w http.ResponseWriter, _ *http.Request) {
		authCalls++
		if authCalls > 1 {
			http.Error(w, "Error=BadAuthentication", http.StatusForbidden)
			return
		}
		fmt.Fprint(w, "Auth=token-123\n")
	})
	mux.HandleFunc("/reader/api/0/stream/contents/", func(w http.ResponseWriter, _ *http.Request) {
		streamCalls++
		http.Error(w, "token expired", http.StatusUnauthorized)
	})

	client := newTestClient(t, mux, Opts{})
	_, err := client.ListArticles(context.Background(), model.ArticleFilter{})

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	assert.Equal(t, 2, authCalls)
	assert.Equal(t, 1, streamCalls, "no retry after failed re-auth")
}

func TestTimeoutSurfacesTimeoutError(t *testing.T) {
	var authCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/ClientLogin", authOK(&authCalls))
	mux.HandleFunc("/reader/api/0/stream/contents/", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		fmt.Fprint(w, `{"items":[]}`)
	})

	client := newTestClient(t, mux, Opts{Timeout: 50 * time.Millisecond})
	_, err := client.ListArticles(context.Background(), model.ArticleFilter{})

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
}

func TestUpstreamErrorCarriesStatus(t *testing.T) {
	var authCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/ClientLogin", authOK(&authCalls))
	mux.HandleFunc("/reader/api/0/stream/contents/", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "temporary glitch", http.StatusBadGateway)
	})

	client := newTestClient(t, mux, Opts{})
	_, err := client.ListArticles(context.Background(), model.ArticleFilter{})

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusBadGateway, upstreamErr.Status)
}

func TestMalformedResponseSurfacesUpstreamError(t *testing.T) {
	var authCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/ClientLogin", authOK(&authCalls))
	mux.HandleFunc("/reader/api/0/stream/contents/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	})

	client := newTestClient(t, mux, Opts{})
	_, err := client.ListArticles(context.Background(), model.ArticleFilter{})

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
}

func TestStatistics(t *testing.T) {
	var authCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/ClientLogin", authOK(&authCalls))
	mux.HandleFunc("/reader/api/0/subscription/list", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"subscriptions":[
			{"id":"feed/a","title":"A"},
			{"id":"feed/b","title":"B"},
			{"id":"feed/c","title":"C"}
		]}`)
	})
	mux.HandleFunc("/reader/api/0/unread-count", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"unreadcounts":[{"id":"feed/a","count":2},{"id":"feed/b","count":7}]}`)
	})

	client := newTestClient(t, mux, Opts{})
	stats, err := client.Statistics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 9, stats.TotalUnread)
	assert.Equal(t, 3, stats.FeedCount)
	require.Len(t, stats.FeedsWithUnread, 2)
	assert.Equal(t, "B", stats.FeedsWithUnread[0].Title)
	assert.Equal(t, "A", stats.FeedsWithUnread[1].Title)
}
