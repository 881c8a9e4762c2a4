package server

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const tradesURIPrefix = "nsei://trades/"

// NewMCPServer builds the MCP server and registers the service operations
// on it. The server is served over stdio by the caller.
func NewMCPServer(svc *Service, version string) *mcpserver.MCPServer {
	srv := mcpserver.NewMCPServer("nsei", version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithResourceCapabilities(false, true),
		mcpserver.WithRecovery(),
	)

	tradesTemplate := mcp.NewResourceTemplate(
		tradesURIPrefix+"{date}",
		"Daily trades",
		mcp.WithTemplateDescription("Equity trades from the NSE bhav copy for the given date."),
		mcp.WithTemplateMIMEType("application/json"),
	)
	srv.AddResourceTemplate(tradesTemplate, svc.handleTrades)

	topMovers := mcp.NewTool("get_top_movers",
		mcp.WithDescription("Get top gainers and losers for a period of ndays up to the given date."),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Date in format YYYY-MM-DD"),
		),
		mcp.WithNumber("ndays",
			mcp.DefaultNumber(1),
			mcp.Description("Number of days leading up to date, default is 1"),
		),
	)
	srv.AddTool(topMovers, svc.handleTopMovers)

	hello := mcp.NewTool("hello",
		mcp.WithDescription("Say hello to someone. Useful as a connectivity check."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name to greet"),
		),
	)
	srv.AddTool(hello, handleHello)

	return srv
}

func (s *Service) handleTrades(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	date := strings.TrimPrefix(req.Params.URI, tradesURIPrefix)
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     s.Trades(ctx, date),
		},
	}, nil
}

func (s *Service) handleTopMovers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ndays := req.GetInt("ndays", 1)

	return mcp.NewToolResultText(s.TopMovers(ctx, date, ndays)), nil
}

func handleHello(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Hello, " + name + "!"), nil
}
