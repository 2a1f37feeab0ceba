// Package netloc provides network-location tools: domain and IP address
// reports and their relationship pivots.
package netloc

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/google/gti-mcp-go/internal/gti"
	"github.com/google/gti-mcp-go/internal/tools"
)

var domainRelationships = []string{
	"associations",
	"caa_records",
	"campaigns",
	"cname_records",
	"collections",
	"comments",
	"communicating_files",
	"downloaded_files",
	"graphs",
	"historical_ssl_certificates",
	"historical_whois",
	"immediate_parent",
	"malware_families",
	"memory_pattern_parents",
	"mx_records",
	"ns_records",
	"parent",
	"referrer_files",
	"related_comments",
	"related_reports",
	"related_threat_actors",
	"reports",
	"resolutions",
	"siblings",
	"soa_records",
	"software_toolkits",
	"subdomains",
	"urls",
	"user_votes",
	"votes",
	"vulnerabilities",
}

var domainKeyRelationships = []string{
	"associations",
}

var ipRelationships = []string{
	"associations",
	"campaigns",
	"collections",
	"comments",
	"communicating_files",
	"downloaded_files",
	"graphs",
	"historical_ssl_certificates",
	"historical_whois",
	"malware_families",
	"memory_pattern_parents",
	"referrer_files",
	"related_comments",
	"related_reports",
	"related_threat_actors",
	"reports",
	"resolutions",
	"software_toolkits",
	"urls",
	"user_votes",
	"votes",
	"vulnerabilities",
}

var ipKeyRelationships = []string{
	"associations",
}

func init() {
	registerGetDomainReport()
	registerGetEntitiesRelatedToADomain()
	registerGetIPAddressReport()
	registerGetEntitiesRelatedToAnIPAddress()
}

func registerGetDomainReport() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get_domain_report",
		Description: "Get a comprehensive domain analysis report from Google Threat Intelligence",
		Profile:     "threat_reports",
		Schema: mcp.NewTool("get_domain_report",
			mcp.WithDescription("Get a comprehensive domain analysis report from Google Threat Intelligence."),
			mcp.WithString("domain",
				mcp.Required(),
				mcp.Description("Domain to analyse")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			domain, err := tools.RequiredString(args, "domain")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}

			client, err := tools.GetClient(ctx)
			if err != nil {
				return tools.ErrorResultf("failed to get API client: %v", err), nil
			}

			res, err := gti.FetchObject(ctx, client, "domains", "domain", domain,
				domainKeyRelationships,
				map[string]string{"exclude_attributes": "last_analysis_results"})
			if err != nil {
				return tools.ErrorResultf("failed to fetch domain report: %v", err), nil
			}

			return tools.SuccessResult(res), nil
		},
	})
}

func registerGetEntitiesRelatedToADomain() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get_entities_related_to_a_domain",
		Description: "Retrieve entities related to the given domain",
		Profile:     "threat_reports",
		Schema: mcp.NewTool("get_entities_related_to_a_domain",
			mcp.WithDescription("Retrieve entities related to the given domain. Relationships include subdomains, resolutions, communicating_files, downloaded_files, urls, mx_records, ns_records, siblings, associations and others."),
			mcp.WithString("domain",
				mcp.Required(),
				mcp.Description("Domain to analyse")),
			mcp.WithString("relationship_name",
				mcp.Required(),
				mcp.Description("Relationship name to fetch")),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of related objects to retrieve (10 by default)")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			domain, err := tools.RequiredString(args, "domain")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}
			relName, err := tools.RequiredString(args, "relationship_name")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}
			if err := tools.ValidateRelationship(relName, domainRelationships); err != nil {
				return tools.ErrorResult(err.Error()), nil
			}
			limit := tools.OptionalInt(args, "limit", 10)

			client, err := tools.GetClient(ctx)
			if err != nil {
				return tools.ErrorResultf("failed to get API client: %v", err), nil
			}

			res, err := gti.FetchObjectRelationships(ctx, client, "domains", domain,
				[]string{relName}, nil, limit)
			if err != nil {
				return tools.ErrorResultf("failed to fetch domain relationships: %v", err), nil
			}

			return tools.SuccessResult(res[relName]), nil
		},
	})
}

func registerGetIPAddressReport() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get_ip_address_report",
		Description: "Get a comprehensive IP address analysis report from Google Threat Intelligence",
		Profile:     "threat_reports",
		Schema: mcp.NewTool("get_ip_address_report",
			mcp.WithDescription("Get a comprehensive IP Address analysis report from Google Threat Intelligence. Accepts IPv4 and IPv6."),
			mcp.WithString("ip_address",
				mcp.Required(),
				mcp.Description("IP address to analyse (IPv4 or IPv6)")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			ip, err := tools.RequiredString(args, "ip_address")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}

			client, err := tools.GetClient(ctx)
			if err != nil {
				return tools.ErrorResultf("failed to get API client: %v", err), nil
			}

			res, err := gti.FetchObject(ctx, client, "ip_addresses", "ip", ip,
				ipKeyRelationships,
				map[string]string{"exclude_attributes": "last_analysis_results"})
			if err != nil {
				return tools.ErrorResultf("failed to fetch IP address report: %v", err), nil
			}

			return tools.SuccessResult(res), nil
		},
	})
}

func registerGetEntitiesRelatedToAnIPAddress() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get_entities_related_to_an_ip_address",
		Description: "Retrieve entities related to the given IP address",
		Profile:     "threat_reports",
		Schema: mcp.NewTool("get_entities_related_to_an_ip_address",
			mcp.WithDescription("Retrieve entities related to the given IP address. Relationships include resolutions, communicating_files, downloaded_files, urls, historical_whois, associations and others."),
			mcp.WithString("ip_address",
				mcp.Required(),
				mcp.Description("IP address to analyse (IPv4 or IPv6)")),
			mcp.WithString("relationship_name",
				mcp.Required(),
				mcp.Description("Relationship name to fetch")),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of related objects to retrieve (10 by default)")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			ip, err := tools.RequiredString(args, "ip_address")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}
			relName, err := tools.RequiredString(args, "relationship_name")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}
			if err := tools.ValidateRelationship(relName, ipRelationships); err != nil {
				return tools.ErrorResult(err.Error()), nil
			}
			limit := tools.OptionalInt(args, "limit", 10)

			client, err := tools.GetClient(ctx)
			if err != nil {
				return tools.ErrorResultf("failed to get API client: %v", err), nil
			}

			res, err := gti.FetchObjectRelationships(ctx, client, "ip_addresses", ip,
				[]string{relName}, nil, limit)
			if err != nil {
				return tools.ErrorResultf("failed to fetch IP address relationships: %v", err), nil
			}

			return tools.SuccessResult(res[relName]), nil
		},
	})
}
