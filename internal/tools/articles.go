package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/0x0BSoD/inoreader-mcp/internal/inoreader"
	"github.com/0x0BSoD/inoreader-mcp/internal/model"
)

// ListArticles renders articles from one feed or the whole reading list.
// Arguments: feed_id?, limit?, unread_only? (default true), days?.
func (s *Service) ListArticles(ctx context.Context, args map[string]any) (string, error) {
	filter, days, err := articleFilter(args)
	if err != nil {
		return "", err
	}

	articles, err := s.client.ListArticles(ctx, filter)
	if err != nil {
		return "", err
	}
	if len(articles) == 0 {
		return "No articles found" + filterSuffix(filter, days) + ".", nil
	}

	header := fmt.Sprintf("Found %d articles%s:", len(articles), filterSuffix(filter, days))
	return header + "\n\n" + formatArticleList(articles), nil
}

// SearchArticles renders articles matching a keyword query.
// Arguments: query (required), limit?, days?.
func (s *Service) SearchArticles(ctx context.Context, args map[string]any) (string, error) {
	query, err := requireString(args, "query")
	if err != nil {
		return "", err
	}

	filter, _, err := articleFilter(args)
	if err != nil {
		return "", err
	}
	filter.UnreadOnly = false

	articles, err := s.client.SearchArticles(ctx, query, filter)
	if err != nil {
		return "", err
	}
	if len(articles) == 0 {
		return fmt.Sprintf("No articles found matching %q.", query), nil
	}

	header := fmt.Sprintf("Found %d articles matching %q:", len(articles), query)
	return header + "\n\n" + formatArticleList(articles), nil
}

// GetArticle renders the full content of one article.
// Arguments: article_id (required).
func (s *Service) GetArticle(ctx context.Context, args map[string]any) (string, error) {
	id, err := requireString(args, "article_id")
	if err != nil {
		return "", err
	}

	article, err := s.client.GetArticle(ctx, id)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n", article.Title)
	if article.Author != "" {
		fmt.Fprintf(&b, "Author: %s\n", article.Author)
	}
	fmt.Fprintf(&b, "Feed: %s\n", article.FeedTitle)
	if !article.Published.IsZero() {
		fmt.Fprintf(&b, "Date: %s\n", article.Published.Format(dateLayout))
	}
	if article.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", article.URL)
	}
	status := "Unread"
	if article.Read {
		status = "Read"
	}
	fmt.Fprintf(&b, "Status: %s\n", status)

	b.WriteString("\n---\n\n")
	if body := readableText(article); body != "" {
		b.WriteString(body)
	} else {
		b.WriteString("No content available for this article.")
	}

	return b.String(), nil
}

// MarkRead marks articles as read and reports the per-id outcome.
// Arguments: article_ids (required, non-empty).
func (s *Service) MarkRead(ctx context.Context, args map[string]any) (string, error) {
	ids, err := stringSliceArg(args, "article_ids")
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", &inoreader.ValidationError{Field: "article_ids", Reason: "is required"}
	}

	results, err := s.client.MarkRead(ctx, ids)
	if err != nil {
		return "", err
	}

	marked := 0
	var failed []string
	for id, res := range results {
		if res.OK {
			marked++
		} else {
			failed = append(failed, fmt.Sprintf("- %s: %s", id, res.Err))
		}
	}
	sort.Strings(failed)

	out := fmt.Sprintf("Marked %d of %d article(s) as read.", marked, len(results))
	if len(failed) > 0 {
		out += "\n\nFailed:\n" + strings.Join(failed, "\n")
	}
	return out, nil
}

func articleFilter(args map[string]any) (model.ArticleFilter, int, error) {
	feedID, err := stringArg(args, "feed_id")
	if err != nil {
		return model.ArticleFilter{}, 0, err
	}
	limit, err := intArg(args, "limit", 0)
	if err != nil {
		return model.ArticleFilter{}, 0, err
	}
	unreadOnly, err := boolArg(args, "unread_only", true)
	if err != nil {
		return model.ArticleFilter{}, 0, err
	}
	days, err := intArg(args, "days", 0)
	if err != nil {
		return model.ArticleFilter{}, 0, err
	}
	if days < 0 {
		return model.ArticleFilter{}, 0, &inoreader.ValidationError{Field: "days", Reason: "must not be negative"}
	}

	f := model.ArticleFilter{
		FeedID:     feedID,
		UnreadOnly: unreadOnly,
		Limit:      limit,
	}
	if days > 0 {
		f.Since = time.Now().AddDate(0, 0, -days)
	}
	return f, days, nil
}

func filterSuffix(f model.ArticleFilter, days int) string {
	var parts []string
	if f.UnreadOnly {
		parts = append(parts, "(unread only)")
	}
	if days > 0 {
		parts = append(parts, fmt.Sprintf("from the last %d days", days))
	}
	if f.FeedID != "" {
		parts = append(parts, "in feed "+f.FeedID)
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}
