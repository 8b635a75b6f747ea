// Package tools implements the tool layer exposed to the MCP host: argument
// validation, calls into the API client and plain-text rendering of results.
// The "analysis" tools do local text assembly only (counting, concatenation);
// any real reasoning is left to the calling assistant.
package tools

import (
	"context"

	"github.com/0x0BSoD/inoreader-mcp/internal/model"
)

// Client is the part of the Inoreader API client the tool layer depends on.
type Client interface {
	ListFeeds(ctx context.Context) ([]model.Feed, error)
	ListArticles(ctx context.Context, f model.ArticleFilter) ([]model.Article, error)
	SearchArticles(ctx context.Context, query string, f model.ArticleFilter) ([]model.Article, error)
	GetArticle(ctx context.Context, id string) (*model.Article, error)
	GetArticles(ctx context.Context, ids []string) ([]model.Article, error)
	MarkRead(ctx context.Context, ids []string) (map[string]model.MarkResult, error)
	Statistics(ctx context.Context) (model.Stats, error)
}

type Service struct {
	client Client
}

func New(client Client) *Service {
	return &Service{client: client}
}
