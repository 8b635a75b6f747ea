package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

const statsTopFeeds = 10

// ListFeeds renders all subscribed feeds sorted by title.
func (s *Service) ListFeeds(ctx context.Context, _ map[string]any) (string, error) {
	feeds, err := s.client.ListFeeds(ctx)
	if err != nil {
		return "", err
	}
	if len(feeds) == 0 {
		return "No feeds found in your Inoreader account.", nil
	}

	sort.Slice(feeds, func(i, j int) bool {
		return strings.ToLower(feeds[i].Title) < strings.ToLower(feeds[j].Title)
	})

	return fmt.Sprintf("Found %d feeds:\n\n%s", len(feeds), formatFeedList(feeds)), nil
}

// Statistics renders aggregate unread counts.
func (s *Service) Statistics(ctx context.Context, _ map[string]any) (string, error) {
	stats, err := s.client.Statistics(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("**Inoreader Statistics:**\n\n")
	fmt.Fprintf(&b, "Subscribed feeds: %d\n", stats.FeedCount)
	fmt.Fprintf(&b, "Total unread articles: %d\n", stats.TotalUnread)

	if len(stats.FeedsWithUnread) > 0 {
		b.WriteString("\nTop feeds with unread articles:\n")
		top := stats.FeedsWithUnread
		if len(top) > statsTopFeeds {
			top = top[:statsTopFeeds]
		}
		for _, f := range top {
			fmt.Fprintf(&b, "- %s: %d unread\n", feedDisplayName(f), f.UnreadCount)
		}
	}

	return strings.TrimRight(b.String(), "\n"), nil
}
