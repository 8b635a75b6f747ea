package tools

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/0x0BSoD/inoreader-mcp/internal/model"
)

func TestCleanText(t *testing.T) {
	in := "<p>Breaking: <b>markets</b> &amp; rates</p>\n<script>alert(1)</script>"
	assert.Equal(t, "Breaking: markets & rates", cleanText(in))
}

func TestCleanTextCollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "one two three", cleanText("one\n\n  two\t three  "))
}

func TestPreviewTruncates(t *testing.T) {
	long := strings.Repeat("x", summaryPreviewRunes+20)

	out := preview(long)

	assert.Len(t, []rune(out), summaryPreviewRunes+3)
	assert.True(t, strings.HasSuffix(out, "..."))
}

func TestPreviewKeepsShortText(t *testing.T) {
	assert.Equal(t, "short enough", preview("short enough"))
}

func TestTruncateCountsRunesNotBytes(t *testing.T) {
	assert.Equal(t, "héllo...", truncate("héllo wörld", 5))
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First one. Second  one.\nThird one.")
	assert.Equal(t, []string{"First one", "Second one", "Third one"}, got)
}

func TestSplitSentencesEmpty(t *testing.T) {
	assert.Empty(t, splitSentences("   "))
}

func TestReadableTextPrefersContent(t *testing.T) {
	a := &model.Article{
		Content: "<p>full body text here</p>",
		Summary: "<p>short excerpt</p>",
	}
	assert.Contains(t, readableText(a), "full body text here")
}

func TestReadableTextFallsBackToSummary(t *testing.T) {
	a := &model.Article{Summary: "<p>short excerpt</p>"}
	assert.Contains(t, readableText(a), "short excerpt")
}

func TestReadableTextEmpty(t *testing.T) {
	assert.Empty(t, readableText(&model.Article{}))
}

func TestFeedDisplayName(t *testing.T) {
	tests := []struct {
		feed model.Feed
		want string
	}{
		{model.Feed{Title: "Infra Weekly"}, "Infra Weekly"},
		{model.Feed{ID: "feed/https://example.com/rss"}, "example.com/rss"},
		{model.Feed{ID: "feed/example.com/rss"}, "example.com/rss"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, feedDisplayName(tt.feed))
	}
}

func TestFormatArticleListMarkers(t *testing.T) {
	out := formatArticleList([]model.Article{
		{ID: "a", Title: "Seen", FeedTitle: "F", Read: true},
		{ID: "b", Title: "Fresh", FeedTitle: "F"},
	})

	assert.Contains(t, out, "1. ✓ Seen")
	assert.Contains(t, out, "2. • Fresh")
	assert.Contains(t, out, "ID: a")
}
