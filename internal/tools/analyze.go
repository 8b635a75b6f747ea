package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/0x0BSoD/inoreader-mcp/internal/inoreader"
	"github.com/0x0BSoD/inoreader-mcp/internal/model"
)

// The analysis tools assemble text for the calling assistant to reason
// about: word counts, previews, a wordlist tally. Nothing here is NLP.

const (
	defaultSummarySentences = 3
	maxSummarySentences     = 10
	analysisDigestLimit     = 5
	trendTopWords           = 10
	trendTopFeeds           = 5
	keywordTop              = 20
	minKeywordRunes         = 5
)

var analyses = map[string]func([]model.Article) string{
	"summary":   analyzeSummary,
	"trends":    analyzeTrends,
	"sentiment": analyzeSentiment,
	"keywords":  analyzeKeywords,
}

// SummarizeArticle renders a short extractive summary of one article.
// Arguments: article_id (required), max_sentences? (1-10, default 3).
func (s *Service) SummarizeArticle(ctx context.Context, args map[string]any) (string, error) {
	id, err := requireString(args, "article_id")
	if err != nil {
		return "", err
	}
	maxSentences, err := intArg(args, "max_sentences", defaultSummarySentences)
	if err != nil {
		return "", err
	}
	if maxSentences < 1 || maxSentences > maxSummarySentences {
		return "", &inoreader.ValidationError{
			Field:  "max_sentences",
			Reason: fmt.Sprintf("must be between 1 and %d", maxSummarySentences),
		}
	}

	article, err := s.client.GetArticle(ctx, id)
	if err != nil {
		return "", err
	}

	header := fmt.Sprintf("**Summary of: %s**", article.Title)

	sentences := splitSentences(readableText(article))
	if len(sentences) == 0 {
		return header + "\n\nNo content available to summarize.", nil
	}
	if len(sentences) > maxSentences {
		sentences = sentences[:maxSentences]
	}

	var b strings.Builder
	b.WriteString(header + "\n\nKey points:\n")
	for i, sentence := range sentences {
		fmt.Fprintf(&b, "%d. %s.\n", i+1, sentence)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// AnalyzeArticles renders a local analysis over several articles.
// Arguments: article_ids (required), analysis_type (required, one of
// summary, trends, sentiment, keywords).
func (s *Service) AnalyzeArticles(ctx context.Context, args map[string]any) (string, error) {
	ids, err := stringSliceArg(args, "article_ids")
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", &inoreader.ValidationError{Field: "article_ids", Reason: "is required"}
	}

	analysisType, err := requireString(args, "analysis_type")
	if err != nil {
		return "", err
	}
	analyze, ok := analyses[analysisType]
	if !ok {
		return "", &inoreader.ValidationError{
			Field:  "analysis_type",
			Reason: "must be one of: summary, trends, sentiment, keywords",
		}
	}

	articles, err := s.client.GetArticles(ctx, ids)
	if err != nil {
		return "", err
	}
	if len(articles) == 0 {
		return "No articles found for the provided IDs.", nil
	}

	return analyze(articles), nil
}

func analyzeSummary(articles []model.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Summary of %d articles:**\n\n", len(articles))

	digest := articles
	if len(digest) > analysisDigestLimit {
		digest = digest[:analysisDigestLimit]
	}
	for i, a := range digest {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, a.Title)
		fmt.Fprintf(&b, "   - Feed: %s\n", a.FeedTitle)
		if !a.Published.IsZero() {
			fmt.Fprintf(&b, "   - Date: %s\n", a.Published.Format(dateLayout))
		}
		if p := truncate(cleanText(a.Summary), 150); p != "" {
			fmt.Fprintf(&b, "   - Preview: %s\n", p)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func analyzeTrends(articles []model.Article) string {
	wordFreq := map[string]int{}
	feedFreq := map[string]int{}

	for _, a := range articles {
		feedFreq[a.FeedTitle]++
		for _, word := range tokenize(a.Title) {
			wordFreq[word]++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Trend Analysis of %d articles:**\n\n", len(articles))

	b.WriteString("Top Keywords:\n")
	for _, e := range topCounts(wordFreq, trendTopWords) {
		fmt.Fprintf(&b, "- %s: %d occurrences\n", e.Key, e.Value)
	}

	b.WriteString("\nMost Active Feeds:\n")
	for _, e := range topCounts(feedFreq, trendTopFeeds) {
		fmt.Fprintf(&b, "- %s: %d articles\n", e.Key, e.Value)
	}
	return strings.TrimRight(b.String(), "\n")
}

var (
	positiveWords = wordSet("good", "great", "excellent", "positive", "success", "win", "best", "innovation", "growth")
	negativeWords = wordSet("bad", "poor", "negative", "fail", "loss", "worst", "crisis", "problem", "issue")
	stopWords     = wordSet("their", "there", "which", "would", "could", "should", "about")
)

func analyzeSentiment(articles []model.Article) string {
	var positive, negative, neutral int

	for _, a := range articles {
		text := strings.ToLower(a.Title + " " + cleanText(a.Summary))

		var posScore, negScore int
		for w := range positiveWords {
			if strings.Contains(text, w) {
				posScore++
			}
		}
		for w := range negativeWords {
			if strings.Contains(text, w) {
				negScore++
			}
		}

		switch {
		case posScore > negScore:
			positive++
		case negScore > posScore:
			negative++
		default:
			neutral++
		}
	}

	total := len(articles)
	pct := func(n int) float64 { return float64(n) / float64(total) * 100 }

	var b strings.Builder
	fmt.Fprintf(&b, "**Sentiment Analysis of %d articles:**\n\n", total)
	fmt.Fprintf(&b, "- Positive: %d (%.1f%%)\n", positive, pct(positive))
	fmt.Fprintf(&b, "- Negative: %d (%.1f%%)\n", negative, pct(negative))
	fmt.Fprintf(&b, "- Neutral: %d (%.1f%%)", neutral, pct(neutral))
	return b.String()
}

func analyzeKeywords(articles []model.Article) string {
	freq := map[string]int{}
	for _, a := range articles {
		for _, word := range tokenize(a.Title + " " + cleanText(a.Summary)) {
			if _, skip := stopWords[word]; !skip {
				freq[word]++
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Top Keywords from %d articles:**\n\n", len(articles))
	for _, e := range topCounts(freq, keywordTop) {
		fmt.Fprintf(&b, "- %s: %d occurrences\n", e.Key, e.Value)
	}
	return strings.TrimRight(b.String(), "\n")
}

// tokenize lower-cases, trims punctuation and keeps words long enough to be
// interesting.
func tokenize(text string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,:;!?\"'()[]")
		if len([]rune(w)) >= minKeywordRunes {
			words = append(words, w)
		}
	}
	return words
}

// topCounts orders by count descending, ties broken alphabetically so output
// is deterministic.
func topCounts(freq map[string]int, n int) []lo.Entry[string, int] {
	entries := lo.Entries(freq)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Key < entries[j].Key
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
