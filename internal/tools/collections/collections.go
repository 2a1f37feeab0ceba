// Package collections provides tools for threat collections. Threats in
// Google Threat Intelligence are modeled as collections with a
// collection_type attribute (threat-actor, malware-family, campaign,
// report, software-toolkit, vulnerability or a generic collection).
package collections

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/google/gti-mcp-go/internal/gti"
	"github.com/google/gti-mcp-go/internal/tools"
)

var collectionRelationships = []string{
	"associations",
	"attack_techniques",
	"domains",
	"files",
	"ip_addresses",
	"urls",
	"threat_actors",
	"malware_families",
	"software_toolkits",
	"campaigns",
	"vulnerabilities",
	"reports",
	"suspected_threat_actors",
}

var collectionKeyRelationships = []string{
	"associations",
}

const collectionExcludedAttrs = "aggregations"

var collectionTypes = map[string]bool{
	"threat-actor":     true,
	"malware-family":   true,
	"campaign":         true,
	"report":           true,
	"software-toolkit": true,
	"vulnerability":    true,
	"collection":       true,
}

func availableCollectionTypes() string {
	names := make([]string, 0, len(collectionTypes))
	for t := range collectionTypes {
		names = append(names, t)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func init() {
	registerGetCollectionReport()
	registerGetEntitiesRelatedToACollection()
	registerSearchThreats()
	registerSearchCampaigns()
	registerSearchThreatActors()
	registerSearchMalwareFamilies()
	registerSearchSoftwareToolkits()
	registerSearchThreatReports()
	registerSearchVulnerabilities()
	registerGetCollectionTimelineEvents()
	registerGetCollectionMitreTree()
}

func registerGetCollectionReport() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get_collection_report",
		Description: "Retrieve a threat (collection) report from Google Threat Intelligence",
		Profile:     "threat_reports",
		Schema: mcp.NewTool("get_collection_report",
			mcp.WithDescription("At Google Threat Intelligence, threats are modeled as collections. This tool retrieves them from the platform. Collections have sub types such as malware-family, threat-actor, campaign or report, found in the collection_type field. Identifiers follow the pattern subtype--<id>."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Google Threat Intelligence collection identifier")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			id, err := tools.RequiredString(args, "id")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}

			client, err := tools.GetClient(ctx)
			if err != nil {
				return tools.ErrorResultf("failed to get API client: %v", err), nil
			}

			res, err := gti.FetchObject(ctx, client, "collections", "collection", id,
				collectionKeyRelationships,
				map[string]string{"exclude_attributes": collectionExcludedAttrs})
			if err != nil {
				return tools.ErrorResultf("failed to fetch collection report: %v", err), nil
			}

			return tools.SuccessResult(res), nil
		},
	})
}

func registerGetEntitiesRelatedToACollection() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get_entities_related_to_a_collection",
		Description: "Retrieve entities related to the given collection",
		Profile:     "threat_hunting",
		Schema: mcp.NewTool("get_entities_related_to_a_collection",
			mcp.WithDescription("Retrieve entities related to the given collection ID. Relationships include associations, attack_techniques, domains, files, ip_addresses, urls, threat_actors, malware_families, software_toolkits, campaigns, vulnerabilities, reports and suspected_threat_actors."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Collection identifier")),
			mcp.WithString("relationship_name",
				mcp.Required(),
				mcp.Description("Relationship name to fetch")),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of related objects to retrieve (10 by default)")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			id, err := tools.RequiredString(args, "id")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}
			relName, err := tools.RequiredString(args, "relationship_name")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}
			if err := tools.ValidateRelationship(relName, collectionRelationships); err != nil {
				return tools.ErrorResult(err.Error()), nil
			}
			limit := tools.OptionalInt(args, "limit", 10)

			client, err := tools.GetClient(ctx)
			if err != nil {
				return tools.ErrorResultf("failed to get API client: %v", err), nil
			}

			res, err := gti.FetchObjectRelationships(ctx, client, "collections", id,
				[]string{relName}, nil, limit)
			if err != nil {
				return tools.ErrorResultf("failed to fetch collection relationships: %v", err), nil
			}

			return tools.SuccessResult(res[relName]), nil
		},
	})
}

// searchCollections runs a filtered search over the collections index and
// returns the matching objects as plain maps.
func searchCollections(ctx context.Context, client *gti.Client, filter, orderBy string, limit int) ([]map[string]any, error) {
	objs, err := gti.CollectIterator(ctx, client, "collections", map[string]string{
		"filter":             filter,
		"order":              orderBy,
		"relationships":      strings.Join(collectionKeyRelationships, ","),
		"exclude_attributes": collectionExcludedAttrs,
	}, limit)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(objs))
	for _, o := range objs {
		out = append(out, o.ToDict())
	}
	return out, nil
}

func searchThreatsByCollectionType(ctx context.Context, client *gti.Client, query, collectionType, orderBy string, limit int) ([]map[string]any, error) {
	if !collectionTypes[collectionType] {
		return nil, fmt.Errorf("wrong collection_type. Available collection_type are: %s", availableCollectionTypes())
	}
	filter := fmt.Sprintf("collection_type:%s %s", collectionType, query)
	return searchCollections(ctx, client, filter, orderBy, limit)
}

func registerSearchThreats() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "search_threats",
		Description: "Search threats in the Google Threat Intelligence platform",
		Profile:     "threat_hunting",
		Schema: mcp.NewTool("search_threats",
			mcp.WithDescription("Search threats in the Google Threat Intelligence platform. Threats are modeled as collections. If the request mentions a specific kind of threat (threat actor, malware family, campaign, report, vulnerability), set collection_type to filter the results. Use order_by to sort by relevance or creation_date, with a trailing + for ascending or - for descending."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Search query to find threats")),
			mcp.WithString("collection_type",
				mcp.Description("Filter results to a specific type of threat: threat-actor, malware-family, software-toolkit, campaign, report, vulnerability or collection")),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of threats to retrieve (5 by default)")),
			mcp.WithString("order_by",
				mcp.Description("Order key for the results (relevance- by default)")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			query, err := tools.RequiredString(args, "query")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}
			collectionType := tools.OptionalString(args, "collection_type", "")
			limit := tools.OptionalInt(args, "limit", 5)
			orderBy := tools.OptionalString(args, "order_by", "relevance-")

			var filter string
			if collectionType != "" {
				if !collectionTypes[collectionType] {
					return tools.ErrorResultf("unknown collection_type. Available are %s", availableCollectionTypes()), nil
				}
				filter = "collection_type:" + collectionType
			}
			filter += query

			client, err := tools.GetClient(ctx)
			if err != nil {
				return tools.ErrorResultf("failed to get API client: %v", err), nil
			}

			res, err := searchCollections(ctx, client, filter, orderBy, limit)
			if err != nil {
				return tools.ErrorResultf("failed to search threats: %v", err), nil
			}

			return tools.SuccessResult(res), nil
		},
	})
}

// typedSearchTool builds a search tool bound to a single collection type.
// The campaign, actor, family, toolkit, report and vulnerability searches
// only differ in the type they pin.
func typedSearchTool(name, noun, collectionType string) *tools.ToolRegistration {
	return &tools.ToolRegistration{
		Name:        name,
		Description: fmt.Sprintf("Search %s in the Google Threat Intelligence platform", noun),
		Profile:     "threat_hunting",
		Schema: mcp.NewTool(name,
			mcp.WithDescription(fmt.Sprintf("Search %s in the Google Threat Intelligence platform. They are modeled as collections; use get_collection_report to fetch full reports. Use order_by to sort by relevance or creation_date, with a trailing + for ascending or - for descending.", noun)),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Search query to find threats")),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of threats to retrieve (10 by default)")),
			mcp.WithString("order_by",
				mcp.Description("Order key for the results (relevance- by default)")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			query, err := tools.RequiredString(args, "query")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}
			limit := tools.OptionalInt(args, "limit", 10)
			orderBy := tools.OptionalString(args, "order_by", "relevance-")

			client, err := tools.GetClient(ctx)
			if err != nil {
				return tools.ErrorResultf("failed to get API client: %v", err), nil
			}

			res, err := searchThreatsByCollectionType(ctx, client, query, collectionType, orderBy, limit)
			if err != nil {
				return tools.ErrorResultf("failed to search %s: %v", noun, err), nil
			}

			return tools.SuccessResult(res), nil
		},
	}
}

func registerSearchCampaigns() {
	tools.RegisterTool(typedSearchTool("search_campaigns", "threat campaigns", "campaign"))
}

func registerSearchThreatActors() {
	tools.RegisterTool(typedSearchTool("search_threat_actors", "threat actors", "threat-actor"))
}

func registerSearchMalwareFamilies() {
	tools.RegisterTool(typedSearchTool("search_malware_families", "malware families", "malware-family"))
}

func registerSearchSoftwareToolkits() {
	tools.RegisterTool(typedSearchTool("search_software_toolkits", "software toolkits", "software-toolkit"))
}

func registerSearchThreatReports() {
	tools.RegisterTool(typedSearchTool("search_threat_reports", "threat reports", "report"))
}

func registerSearchVulnerabilities() {
	tools.RegisterTool(typedSearchTool("search_vulnerabilities", "vulnerabilities (CVEs)", "vulnerability"))
}

func registerGetCollectionTimelineEvents() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get_collection_timeline_events",
		Description: "Retrieve curated timeline events for a collection",
		Profile:     "threat_hunting",
		Schema: mcp.NewTool("get_collection_timeline_events",
			mcp.WithDescription("Retrieves timeline events from the given collection, when available. This is curated information produced by security analysts at Google Threat Intelligence; fetch it for campaigns and threat actors. Events are usually grouped by the event_category field."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Collection identifier")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			id, err := tools.RequiredString(args, "id")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}

			client, err := tools.GetClient(ctx)
			if err != nil {
				return tools.ErrorResultf("failed to get API client: %v", err), nil
			}

			data, err := client.GetData(ctx, "collections/"+id+"/timeline/events", nil)
			if err != nil {
				return tools.ErrorResultf("failed to fetch timeline events: %v", err), nil
			}

			return tools.SuccessResult(data), nil
		},
	})
}

func registerGetCollectionMitreTree() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get_collection_mitre_tree",
		Description: "Retrieve the MITRE tactics and techniques associated with a threat",
		Profile:     "threat_hunting",
		Schema: mcp.NewTool("get_collection_mitre_tree",
			mcp.WithDescription("Retrieves the MITRE tactics and techniques associated with a threat."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Collection identifier")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			id, err := tools.RequiredString(args, "id")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}

			client, err := tools.GetClient(ctx)
			if err != nil {
				return tools.ErrorResultf("failed to get API client: %v", err), nil
			}

			data, err := client.GetData(ctx, "collections/"+id+"/mitre_tree", nil)
			if err != nil {
				return tools.ErrorResultf("failed to fetch MITRE tree: %v", err), nil
			}

			return tools.SuccessResult(data), nil
		},
	})
}
