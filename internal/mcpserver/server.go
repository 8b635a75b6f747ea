// Package mcpserver registers the Inoreader tool catalog with the MCP host
// protocol and serves it over stdio. Results and errors are rendered as text
// content; no tool failure terminates the process.
package mcpserver

import (
	"context"
	"errors"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/0x0BSoD/inoreader-mcp/internal/inoreader"
	"github.com/0x0BSoD/inoreader-mcp/internal/tools"
)

const serverName = "inoreader-mcp"

type toolFunc func(ctx context.Context, args map[string]any) (string, error)

type Server struct {
	mcp *server.MCPServer
	svc *tools.Service
}

func New(svc *tools.Service, version string) *Server {
	s := &Server{
		mcp: server.NewMCPServer(
			serverName,
			version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		svc: svc,
	}
	s.registerTools()
	return s
}

// ServeStdio blocks serving the host protocol until stdin closes. Stdout is
// the protocol channel; all logging stays on stderr.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("list_feeds",
		mcp.WithDescription("List all subscribed feeds in Inoreader, with categories and unread counts"),
		mcp.WithTitleAnnotation("List feeds"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), s.handle("list_feeds", s.svc.ListFeeds))

	s.mcp.AddTool(mcp.NewTool("list_articles",
		mcp.WithDescription("List articles from feeds with optional filters"),
		mcp.WithString("feed_id",
			mcp.Description("Stream id of a feed to filter articles (as returned by list_feeds)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of articles to return (default and cap: 50)"),
		),
		mcp.WithBoolean("unread_only",
			mcp.Description("Only show unread articles (default: true)"),
		),
		mcp.WithNumber("days",
			mcp.Description("Only show articles from the last N days"),
		),
		mcp.WithTitleAnnotation("List articles"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), s.handle("list_articles", s.svc.ListArticles))

	s.mcp.AddTool(mcp.NewTool("search_articles",
		mcp.WithDescription("Search for articles by keyword"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default and cap: 50)"),
		),
		mcp.WithNumber("days",
			mcp.Description("Search within the last N days"),
		),
		mcp.WithTitleAnnotation("Search articles"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), s.handle("search_articles", s.svc.SearchArticles))

	s.mcp.AddTool(mcp.NewTool("get_article",
		mcp.WithDescription("Get the full content of a specific article"),
		mcp.WithString("article_id",
			mcp.Required(),
			mcp.Description("The id of the article to retrieve"),
		),
		mcp.WithTitleAnnotation("Get article"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), s.handle("get_article", s.svc.GetArticle))

	s.mcp.AddTool(mcp.NewTool("mark_as_read",
		mcp.WithDescription("Mark articles as read; reports success or failure per article id"),
		mcp.WithArray("article_ids",
			mcp.Required(),
			mcp.Description("Article ids to mark as read"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithTitleAnnotation("Mark as read"),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), s.handle("mark_as_read", s.svc.MarkRead))

	s.mcp.AddTool(mcp.NewTool("summarize_article",
		mcp.WithDescription("Generate a short extractive summary of an article"),
		mcp.WithString("article_id",
			mcp.Required(),
			mcp.Description("The id of the article to summarize"),
		),
		mcp.WithNumber("max_sentences",
			mcp.Description("Number of sentences to include, 1-10 (default: 3)"),
		),
		mcp.WithTitleAnnotation("Summarize article"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), s.handle("summarize_article", s.svc.SummarizeArticle))

	s.mcp.AddTool(mcp.NewTool("analyze_articles",
		mcp.WithDescription("Analyze multiple articles for trends, sentiment, or keywords (local word counting, no AI)"),
		mcp.WithArray("article_ids",
			mcp.Required(),
			mcp.Description("Article ids to analyze"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("analysis_type",
			mcp.Required(),
			mcp.Enum("summary", "trends", "sentiment", "keywords"),
			mcp.Description("Type of analysis to perform"),
		),
		mcp.WithTitleAnnotation("Analyze articles"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), s.handle("analyze_articles", s.svc.AnalyzeArticles))

	s.mcp.AddTool(mcp.NewTool("get_statistics",
		mcp.WithDescription("Get statistics about unread articles"),
		mcp.WithTitleAnnotation("Get statistics"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), s.handle("get_statistics", s.svc.Statistics))
}

func (s *Server) handle(name string, fn toolFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := fn(ctx, req.GetArguments())
		if err != nil {
			log.Printf("[WARN] tool %s failed: %v", name, err)
			return mcp.NewToolResultError(renderError(err)), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}

// renderError turns typed client errors into host-facing text. The timeout
// message carries a retry suggestion; upstream errors carry the status.
func renderError(err error) string {
	var (
		validationErr *inoreader.ValidationError
		notFoundErr   *inoreader.NotFoundError
		timeoutErr    *inoreader.TimeoutError
		authErr       *inoreader.AuthError
		upstreamErr   *inoreader.UpstreamError
	)

	switch {
	case errors.As(err, &validationErr):
		return "Invalid arguments: " + validationErr.Error()
	case errors.As(err, &notFoundErr):
		return notFoundErr.Error()
	case errors.As(err, &timeoutErr):
		return timeoutErr.Error() + "; the request may succeed if retried"
	case errors.As(err, &authErr):
		return authErr.Error()
	case errors.As(err, &upstreamErr):
		return upstreamErr.Error()
	}
	return err.Error()
}
