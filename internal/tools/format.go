package tools

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"

	"github.com/0x0BSoD/inoreader-mcp/internal/model"
)

const (
	summaryPreviewRunes = 500
	dateLayout          = "2006-01-02 15:04"
)

var (
	tagStripper       = bluemonday.StrictPolicy()
	redundantNewLines = regexp.MustCompile(`\n{3,}`)
)

// cleanText strips HTML markup and collapses whitespace into a single line.
func cleanText(s string) string {
	out := tagStripper.Sanitize(s)
	out = html.UnescapeString(out)
	return strings.Join(strings.Fields(out), " ")
}

// preview is cleanText truncated for list output.
func preview(s string) string {
	return truncate(cleanText(s), summaryPreviewRunes)
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// readableText extracts the readable body of an article, preferring full
// content over the summary excerpt. Readability failures fall back to a
// plain tag strip so the tool still returns something useful.
func readableText(a *model.Article) string {
	raw := a.Content
	if raw == "" {
		raw = a.Summary
	}
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	doc, err := readability.FromReader(strings.NewReader(raw), nil)
	if err != nil || strings.TrimSpace(doc.TextContent) == "" {
		return cleanText(raw)
	}
	return redundantNewLines.ReplaceAllString(strings.TrimSpace(doc.TextContent), "\n\n")
}

func splitSentences(text string) []string {
	flat := strings.Join(strings.Fields(text), " ")

	var sentences []string
	for _, part := range strings.Split(flat, ". ") {
		part = strings.TrimSpace(strings.TrimSuffix(part, "."))
		if part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

func formatFeedList(feeds []model.Feed) string {
	var b strings.Builder
	for i, f := range feeds {
		fmt.Fprintf(&b, "%d. %s\n", i+1, f.Title)
		if len(f.Categories) > 0 {
			fmt.Fprintf(&b, "   Categories: %s\n", strings.Join(f.Categories, ", "))
		}
		if f.UnreadCount > 0 {
			fmt.Fprintf(&b, "   Unread: %d\n", f.UnreadCount)
		}
		fmt.Fprintf(&b, "   URL: %s\n\n", f.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatArticleList(articles []model.Article) string {
	var b strings.Builder
	for i, a := range articles {
		status := "•"
		if a.Read {
			status = "✓"
		}
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, status, a.Title)
		fmt.Fprintf(&b, "   ID: %s\n", a.ID)
		fmt.Fprintf(&b, "   Feed: %s\n", a.FeedTitle)
		if !a.Published.IsZero() {
			fmt.Fprintf(&b, "   Date: %s\n", a.Published.Format(dateLayout))
		}
		if a.URL != "" {
			fmt.Fprintf(&b, "   URL: %s\n", a.URL)
		}
		if s := preview(a.Summary); s != "" {
			fmt.Fprintf(&b, "   Summary: %s\n", s)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// feedDisplayName prefers the title and falls back to a trimmed stream id.
func feedDisplayName(f model.Feed) string {
	if f.Title != "" {
		return f.Title
	}
	name := strings.TrimPrefix(f.ID, "feed/")
	if _, rest, ok := strings.Cut(name, "://"); ok {
		name = rest
	}
	return name
}
