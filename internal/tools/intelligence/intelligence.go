// Package intelligence provides IOC search over the intelligence index.
package intelligence

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/google/gti-mcp-go/internal/gti"
	"github.com/google/gti-mcp-go/internal/tools"
)

func init() {
	registerSearchIOCs()
}

func registerSearchIOCs() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "search_iocs",
		Description: "Search Indicators of Compromise in the Google Threat Intelligence platform",
		Profile:     "threat_hunting",
		Schema: mcp.NewTool("search_iocs",
			mcp.WithDescription("Search Indicators of Compromise (IOC) in the Google Threat Intelligence platform. Use the entity modifier to search a single IOC type (file, url, domain, ip) and the platform search modifiers to narrow results. Integer modifiers accept + for greater-than and - for less-than, e.g. p:60+."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Search query to find IOCs")),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of IOCs to retrieve (10 by default)")),
			mcp.WithString("order_by",
				mcp.Description("Order key for the results (last_submission_date- by default)")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			query, err := tools.RequiredString(args, "query")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}
			limit := tools.OptionalInt(args, "limit", 10)
			orderBy := tools.OptionalString(args, "order_by", "last_submission_date-")

			client, err := tools.GetClient(ctx)
			if err != nil {
				return tools.ErrorResultf("failed to get API client: %v", err), nil
			}

			objs, err := gti.CollectIterator(ctx, client, "intelligence/search", map[string]string{
				"query": query,
				"order": orderBy,
			}, limit)
			if err != nil {
				return tools.ErrorResultf("failed to search IOCs: %v", err), nil
			}

			out := make([]map[string]any, 0, len(objs))
			for _, o := range objs {
				out = append(out, o.ToDict())
			}

			return tools.SuccessResult(out), nil
		},
	})
}
