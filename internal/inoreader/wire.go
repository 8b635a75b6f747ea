package inoreader

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/0x0BSoD/inoreader-mcp/internal/model"
)

// Upstream response shapes, decoded as-is and mapped to model types.

type subscriptionList struct {
	Subscriptions []subscription `json:"subscriptions"`
}

type subscription struct {
	ID         string                 `json:"id"`
	Title      string                 `json:"title"`
	URL        string                 `json:"url"`
	HTMLURL    string                 `json:"htmlUrl"`
	Categories []subscriptionCategory `json:"categories"`
}

type subscriptionCategory struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type unreadCounts struct {
	UnreadCounts []struct {
		ID    string `json:"id"`
		Count int    `json:"count"`
	} `json:"unreadcounts"`
}

type streamContents struct {
	Items []streamItem `json:"items"`
}

type streamItem struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	Published  int64    `json:"published"`
	Categories []string `json:"categories"`
	Origin     struct {
		StreamID string `json:"streamId"`
		Title    string `json:"title"`
	} `json:"origin"`
	Alternate []struct {
		Href string `json:"href"`
		Type string `json:"type"`
	} `json:"alternate"`
	Summary struct {
		Content string `json:"content"`
	} `json:"summary"`
	Content struct {
		Content string `json:"content"`
	} `json:"content"`
}

func (it streamItem) toModel() model.Article {
	a := model.Article{
		ID:         it.ID,
		Title:      it.Title,
		Author:     it.Author,
		FeedID:     it.Origin.StreamID,
		FeedTitle:  it.Origin.Title,
		Categories: it.Categories,
		// Item categories carry the user id, not "-", so the read state is
		// matched by suffix. Contains would also match reading-list.
		Read:    lo.SomeBy(it.Categories, func(cat string) bool { return strings.HasSuffix(cat, readTagSuffix) }),
		Summary: it.Summary.Content,
		Content: it.Content.Content,
	}

	if it.Published > 0 {
		a.Published = time.Unix(it.Published, 0).UTC()
	}

	for _, alt := range it.Alternate {
		if alt.Type == "text/html" {
			a.URL = alt.Href
			break
		}
	}

	return a
}
