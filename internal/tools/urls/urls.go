// Package urls provides URL analysis tools. The API identifies URLs by
// their unpadded base64 form, so every tool converts before fetching.
package urls

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/google/gti-mcp-go/internal/gti"
	"github.com/google/gti-mcp-go/internal/tools"
)

var urlRelationships = []string{
	"analyses",
	"associations",
	"campaigns",
	"collections",
	"comments",
	"communicating_files",
	"contacted_domains",
	"contacted_ips",
	"downloaded_files",
	"embedded_js_files",
	"graphs",
	"http_response_contents",
	"last_serving_ip_address",
	"malware_families",
	"memory_pattern_parents",
	"network_location",
	"parent_resource_urls",
	"redirecting_urls",
	"redirects_to",
	"referrer_files",
	"referrer_urls",
	"related_collections",
	"related_comments",
	"related_reports",
	"related_threat_actors",
	"reports",
	"software_toolkits",
	"submissions",
	"urls_related_by_tracker_id",
	"user_votes",
	"votes",
	"vulnerabilities",
}

var urlKeyRelationships = []string{
	"associations",
}

func init() {
	registerGetURLReport()
	registerGetEntitiesRelatedToAnURL()
}

// urlToBase64 converts the URL into its API identifier: base64 without
// padding, as the API requires.
func urlToBase64(url string) string {
	return strings.TrimRight(base64.StdEncoding.EncodeToString([]byte(url)), "=")
}

func registerGetURLReport() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get_url_report",
		Description: "Get a comprehensive URL analysis report from Google Threat Intelligence",
		Profile:     "threat_reports",
		Schema: mcp.NewTool("get_url_report",
			mcp.WithDescription("Get a comprehensive URL analysis report from Google Threat Intelligence."),
			mcp.WithString("url",
				mcp.Required(),
				mcp.Description("URL to analyse")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			url, err := tools.RequiredString(args, "url")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}

			client, err := tools.GetClient(ctx)
			if err != nil {
				return tools.ErrorResultf("failed to get API client: %v", err), nil
			}

			res, err := gti.FetchObject(ctx, client, "urls", "url", urlToBase64(url),
				urlKeyRelationships,
				map[string]string{"exclude_attributes": "last_analysis_results"})
			if err != nil {
				return tools.ErrorResultf("failed to fetch URL report: %v", err), nil
			}

			return tools.SuccessResult(res), nil
		},
	})
}

func registerGetEntitiesRelatedToAnURL() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get_entities_related_to_an_url",
		Description: "Retrieve entities related to the given URL",
		Profile:     "threat_reports",
		Schema: mcp.NewTool("get_entities_related_to_an_url",
			mcp.WithDescription("Retrieve entities related to the given URL. Relationships include contacted_domains, contacted_ips, downloaded_files, redirects_to, redirecting_urls, network_location, associations and others."),
			mcp.WithString("url",
				mcp.Required(),
				mcp.Description("URL to analyse")),
			mcp.WithString("relationship_name",
				mcp.Required(),
				mcp.Description("Relationship name to fetch")),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of related objects to retrieve (10 by default)")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			url, err := tools.RequiredString(args, "url")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}
			relName, err := tools.RequiredString(args, "relationship_name")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}
			if err := tools.ValidateRelationship(relName, urlRelationships); err != nil {
				return tools.ErrorResult(err.Error()), nil
			}
			limit := tools.OptionalInt(args, "limit", 10)

			client, err := tools.GetClient(ctx)
			if err != nil {
				return tools.ErrorResultf("failed to get API client: %v", err), nil
			}

			res, err := gti.FetchObjectRelationships(ctx, client, "urls", urlToBase64(url),
				[]string{relName}, nil, limit)
			if err != nil {
				return tools.ErrorResultf("failed to fetch URL relationships: %v", err), nil
			}

			return tools.SuccessResult(res[relName]), nil
		},
	})
}
