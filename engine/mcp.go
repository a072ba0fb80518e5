package engine

import (
	"context"
	"encoding/json"

	"github.com/hazyhaar/clipd/kit"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterMCP registers all clipboard tools on an MCP server.
func (e *Engine) RegisterMCP(srv *mcp.Server) {
	e.registerGetContents(srv)
	e.registerCopy(srv)
	e.registerInfo(srv)
	e.registerSearch(srv)
	e.registerGetEntry(srv)
	e.registerRecent(srv)
	e.registerURLEntries(srv)
	e.registerStats(srv)
	e.registerDelete(srv)
}

// register wraps the endpoint with the standard cross-cutting chain before
// handing it to the MCP transport.
func (e *Engine) register(srv *mcp.Server, tool *mcp.Tool, endpoint kit.Endpoint, decode func(*mcp.CallToolRequest) (*kit.MCPDecodeResult, error)) {
	mw := kit.Chain(kit.Recovery(e.log), kit.Logging(e.log, tool.Name))
	kit.RegisterMCPTool(srv, tool, mw(endpoint), decode)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// decodeInto builds a decode func unmarshalling tool arguments into a fresh T.
func decodeInto[T any]() func(*mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	return func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		p := new(T)
		if len(r.Params.Arguments) > 0 {
			if err := json.Unmarshal(r.Params.Arguments, p); err != nil {
				return nil, err
			}
		}
		return &kit.MCPDecodeResult{Request: p}, nil
	}
}

func (e *Engine) registerGetContents(srv *mcp.Server) {
	type req struct{}

	tool := &mcp.Tool{
		Name:        "get_clipboard_contents",
		Description: "Read the current clipboard and store it in history",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return e.CaptureClipboard(ctx)
	}

	e.register(srv, tool, endpoint, decodeInto[req]())
}

func (e *Engine) registerCopy(srv *mcp.Server) {
	type req struct {
		Text string `json:"text"`
	}

	tool := &mcp.Tool{
		Name:        "copy_to_clipboard",
		Description: "Write text to the system clipboard and record it in history",
		InputSchema: inputSchema(map[string]any{
			"text": map[string]any{"type": "string", "description": "Text to place on the clipboard"},
		}, []string{"text"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return e.CopyToClipboard(ctx, p.Text)
	}

	e.register(srv, tool, endpoint, decodeInto[req]())
}

func (e *Engine) registerInfo(srv *mcp.Server) {
	type req struct{}

	tool := &mcp.Tool{
		Name:        "get_clipboard_info",
		Description: "Inspect the current clipboard (type, length, preview) without storing it",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return e.ClipboardInfo(ctx)
	}

	e.register(srv, tool, endpoint, decodeInto[req]())
}

func (e *Engine) registerSearch(srv *mcp.Server) {
	type req struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}

	tool := &mcp.Tool{
		Name:        "search_clipboard_history",
		Description: "Full-text search over clipboard history, including fetched URL content",
		InputSchema: inputSchema(map[string]any{
			"query": map[string]any{"type": "string", "description": "Search terms"},
			"limit": map[string]any{"type": "integer", "description": "Max results (default 20)"},
		}, []string{"query"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		entries, err := e.Search(ctx, p.Query, p.Limit)
		if err != nil {
			return nil, err
		}
		return map[string]any{"entries": entries, "count": len(entries)}, nil
	}

	e.register(srv, tool, endpoint, decodeInto[req]())
}

func (e *Engine) registerGetEntry(srv *mcp.Server) {
	type req struct {
		EntryID int64 `json:"entry_id"`
	}

	tool := &mcp.Tool{
		Name:        "get_clipboard_entry",
		Description: "Retrieve one history entry by id",
		InputSchema: inputSchema(map[string]any{
			"entry_id": map[string]any{"type": "integer", "description": "Entry id"},
		}, []string{"entry_id"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return e.GetByID(ctx, p.EntryID)
	}

	e.register(srv, tool, endpoint, decodeInto[req]())
}

func (e *Engine) registerRecent(srv *mcp.Server) {
	type req struct {
		Limit       int    `json:"limit"`
		ContentType string `json:"content_type"`
	}

	tool := &mcp.Tool{
		Name:        "get_recent_entries",
		Description: "List the newest history entries, optionally filtered by content type",
		InputSchema: inputSchema(map[string]any{
			"limit":        map[string]any{"type": "integer", "description": "Max results (default 20)"},
			"content_type": map[string]any{"type": "string", "description": "Filter: text, image, url or file"},
		}, nil),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		entries, err := e.Recent(ctx, p.Limit, p.ContentType)
		if err != nil {
			return nil, err
		}
		return map[string]any{"entries": entries, "count": len(entries)}, nil
	}

	e.register(srv, tool, endpoint, decodeInto[req]())
}

func (e *Engine) registerURLEntries(srv *mcp.Server) {
	type req struct {
		Limit int `json:"limit"`
	}

	tool := &mcp.Tool{
		Name:        "get_url_entries",
		Description: "List the newest URL-bearing entries with their fetched metadata",
		InputSchema: inputSchema(map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Max results (default 20)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		entries, err := e.URLEntries(ctx, p.Limit)
		if err != nil {
			return nil, err
		}
		return map[string]any{"entries": entries, "count": len(entries)}, nil
	}

	e.register(srv, tool, endpoint, decodeInto[req]())
}

func (e *Engine) registerStats(srv *mcp.Server) {
	type req struct{}

	tool := &mcp.Tool{
		Name:        "get_clipboard_stats",
		Description: "Aggregate history statistics: counts per type, enrichment state, storage size",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return e.Stats(ctx)
	}

	e.register(srv, tool, endpoint, decodeInto[req]())
}

func (e *Engine) registerDelete(srv *mcp.Server) {
	type req struct {
		EntryID int64 `json:"entry_id"`
	}

	tool := &mcp.Tool{
		Name:        "delete_entry",
		Description: "Delete one history entry by id",
		InputSchema: inputSchema(map[string]any{
			"entry_id": map[string]any{"type": "integer", "description": "Entry id"},
		}, []string{"entry_id"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		if err := e.Delete(ctx, p.EntryID); err != nil {
			return nil, err
		}
		return map[string]any{"deleted": p.EntryID}, nil
	}

	e.register(srv, tool, endpoint, decodeInto[req]())
}
