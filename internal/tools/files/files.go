// Package files provides file analysis tools: comprehensive reports,
// relationship pivots, sandbox behaviour reports and file submission.
package files

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/google/gti-mcp-go/internal/gti"
	"github.com/google/gti-mcp-go/internal/tools"
)

// fileRelationships are the relationship names a file object supports.
var fileRelationships = []string{
	"analyses",
	"associations",
	"behaviours",
	"attack_techniques",
	"bundled_files",
	"campaigns",
	"carbonblack_children",
	"carbonblack_parents",
	"collections",
	"comments",
	"compressed_parents",
	"contacted_domains",
	"contacted_ips",
	"contacted_urls",
	"dropped_files",
	"email_attachments",
	"email_parents",
	"embedded_domains",
	"embedded_ips",
	"embedded_urls",
	"execution_parents",
	"graphs",
	"itw_domains",
	"itw_ips",
	"itw_urls",
	"malware_families",
	"memory_pattern_domains",
	"memory_pattern_ips",
	"memory_pattern_urls",
	"overlay_children",
	"overlay_parents",
	"pcap_children",
	"pcap_parents",
	"pe_resource_children",
	"pe_resource_parents",
	"related_attack_techniques",
	"related_reports",
	"related_threat_actors",
	"reports",
	"screenshots",
	"similar_files",
	"software_toolkits",
	"submissions",
	"urls_for_embedded_js",
	"user_votes",
	"votes",
	"vulnerabilities",
}

// fileKeyRelationships are fetched alongside every file report.
var fileKeyRelationships = []string{
	"contacted_domains",
	"contacted_ips",
	"contacted_urls",
	"dropped_files",
	"embedded_domains",
	"embedded_ips",
	"embedded_urls",
	"associations",
}

func init() {
	registerGetFileReport()
	registerGetEntitiesRelatedToAFile()
	registerGetFileBehaviorReport()
	registerGetFileBehaviorSummary()
	registerAnalyseFile()
}

func registerGetFileReport() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get_file_report",
		Description: "Get a comprehensive file analysis report using its hash (MD5/SHA-1/SHA-256)",
		Profile:     "threat_reports",
		Schema: mcp.NewTool("get_file_report",
			mcp.WithDescription("Get a comprehensive file analysis report using its hash (MD5/SHA-1/SHA-256). Returns a concise summary of key threat details including detection stats, threat classification, and important indicators."),
			mcp.WithString("hash",
				mcp.Required(),
				mcp.Description("MD5, SHA-1 or SHA-256 hash of the file to analyze")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			hash, err := tools.RequiredString(args, "hash")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}

			client, err := tools.GetClient(ctx)
			if err != nil {
				return tools.ErrorResultf("failed to get API client: %v", err), nil
			}

			res, err := gti.FetchObject(ctx, client, "files", "file", hash,
				fileKeyRelationships,
				map[string]string{"exclude_attributes": "last_analysis_results"})
			if err != nil {
				return tools.ErrorResultf("failed to fetch file report: %v", err), nil
			}

			return tools.SuccessResult(res), nil
		},
	})
}

func registerGetEntitiesRelatedToAFile() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get_entities_related_to_a_file",
		Description: "Retrieve entities related to the given file hash",
		Profile:     "threat_reports",
		Schema: mcp.NewTool("get_entities_related_to_a_file",
			mcp.WithDescription("Retrieve entities related to the given file hash. Relationships include contacted_domains, contacted_ips, contacted_urls, dropped_files, behaviours, bundled_files, execution_parents, similar_files, malware_families, associations and others."),
			mcp.WithString("hash",
				mcp.Required(),
				mcp.Description("MD5, SHA-1 or SHA-256 hash that identifies the file")),
			mcp.WithString("relationship_name",
				mcp.Required(),
				mcp.Description("Relationship name to fetch")),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of related objects to retrieve (10 by default)")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			hash, err := tools.RequiredString(args, "hash")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}
			relName, err := tools.RequiredString(args, "relationship_name")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}
			if err := tools.ValidateRelationship(relName, fileRelationships); err != nil {
				return tools.ErrorResult(err.Error()), nil
			}
			limit := tools.OptionalInt(args, "limit", 10)

			client, err := tools.GetClient(ctx)
			if err != nil {
				return tools.ErrorResultf("failed to get API client: %v", err), nil
			}

			res, err := gti.FetchObjectRelationships(ctx, client, "files", hash,
				[]string{relName}, nil, limit)
			if err != nil {
				return tools.ErrorResultf("failed to fetch file relationships: %v", err), nil
			}

			return tools.SuccessResult(res[relName]), nil
		},
	})
}

func registerGetFileBehaviorReport() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get_file_behavior_report",
		Description: "Retrieve the file behaviour report of the given file behaviour identifier",
		Profile:     "threat_reports",
		Schema: mcp.NewTool("get_file_behavior_report",
			mcp.WithDescription("Retrieve the file behaviour report of the given file behaviour identifier. The file behaviour ID is composed as \"{file hash}_{sandbox name}\"; get all behaviours of a file via get_entities_related_to_a_file with the \"behaviours\" relationship."),
			mcp.WithString("file_behaviour_id",
				mcp.Required(),
				mcp.Description("File behaviour ID ({file hash}_{sandbox name})")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			behaviourID, err := tools.RequiredString(args, "file_behaviour_id")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}

			client, err := tools.GetClient(ctx)
			if err != nil {
				return tools.ErrorResultf("failed to get API client: %v", err), nil
			}

			res, err := gti.FetchObject(ctx, client, "file_behaviours", "file_behaviour",
				behaviourID, fileKeyRelationships, nil)
			if err != nil {
				return tools.ErrorResultf("failed to fetch file behaviour report: %v", err), nil
			}

			return tools.SuccessResult(res), nil
		},
	})
}

func registerGetFileBehaviorSummary() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get_file_behavior_summary",
		Description: "Retrieve a summary of all the file behavior reports from all the sandboxes",
		Profile:     "threat_reports",
		Schema: mcp.NewTool("get_file_behavior_summary",
			mcp.WithDescription("Retrieve a summary of all the file behavior reports from all the sandboxes."),
			mcp.WithString("hash",
				mcp.Required(),
				mcp.Description("MD5, SHA-1 or SHA-256 hash that identifies the file")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			hash, err := tools.RequiredString(args, "hash")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}

			client, err := tools.GetClient(ctx)
			if err != nil {
				return tools.ErrorResultf("failed to get API client: %v", err), nil
			}

			data, err := client.GetData(ctx, "files/"+hash+"/behaviour_summary", nil)
			if err != nil {
				return tools.ErrorResultf("failed to fetch behaviour summary: %v", err), nil
			}

			return tools.SuccessResult(data), nil
		},
	})
}

func registerAnalyseFile() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "analyse_file",
		Description: "Upload and analyse a file in Google Threat Intelligence",
		Profile:     "scanning",
		Schema: mcp.NewTool("analyse_file",
			mcp.WithDescription("Upload and analyse a file in Google Threat Intelligence. The file will be uploaded and shared with the community. Waits for the analysis to complete and returns its report."),
			mcp.WithString("file_path",
				mcp.Required(),
				mcp.Description("Absolute path to the file to analyse")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			filePath, err := tools.RequiredString(args, "file_path")
			if err != nil {
				return tools.ErrorResult(err.Error()), nil
			}

			client, err := tools.GetClient(ctx)
			if err != nil {
				return tools.ErrorResultf("failed to get API client: %v", err), nil
			}

			f, err := os.Open(filePath)
			if err != nil {
				return tools.ErrorResultf("failed to open file: %v", err), nil
			}
			defer f.Close()

			analysisID, err := client.ScanFile(ctx, filepath.Base(filePath), f)
			if err != nil {
				return tools.ErrorResultf("failed to upload file: %v", err), nil
			}

			analysis, err := client.WaitForAnalysis(ctx, analysisID)
			if err != nil {
				return tools.ErrorResultf("failed waiting for analysis %s: %v", analysisID, err), nil
			}

			return tools.SuccessResult(analysis.ToDict()), nil
		},
	})
}
