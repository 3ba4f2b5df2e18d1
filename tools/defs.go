package tools

import "github.com/deepscout/deepscout/provider"

// defFor returns the definition advertised to the model for one tool
// kind. The parameter schemas double as the local validation source.
func defFor(kind Kind) provider.ToolDef {
	switch kind {
	case KindWebSearch:
		return funcDef("web_search",
			"Search the web for current information, facts, news, or research material. "+
				"Returns ranked results with titles, URLs and content snippets, and optionally "+
				"an AI-generated direct answer. Use 'advanced' search depth for complex topics.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The search query. Be specific and use relevant keywords.",
					},
					"search_depth": map[string]any{
						"type":        "string",
						"description": "Search depth: 'basic' for quick results, 'advanced' for comprehensive research.",
					},
					"max_results": map[string]any{
						"type":        "integer",
						"description": "Maximum number of results to return, 1-20.",
					},
					"include_answer": map[string]any{
						"type":        "boolean",
						"description": "Include an AI-generated direct answer alongside the results.",
					},
					"include_raw_content": map[string]any{
						"type":        "boolean",
						"description": "Include the full raw content of each result instead of just snippets.",
					},
					"include_domains": map[string]any{
						"type":        "array",
						"description": "Restrict results to these domains, e.g. ['wikipedia.org'].",
					},
					"exclude_domains": map[string]any{
						"type":        "array",
						"description": "Exclude results from these domains.",
					},
				},
				"required": []string{"query"},
			})

	case KindWebExtract:
		return funcDef("web_extract",
			"Extract the full, cleaned content of specific web pages as markdown. "+
				"Use this to read complete articles or documentation after a search surfaced "+
				"their URLs. Handles multiple URLs in one call and reports per-URL failures.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"urls": map[string]any{
						"type":        "array",
						"description": "Complete URLs to extract content from.",
					},
					"include_images": map[string]any{
						"type":        "boolean",
						"description": "Include images found on the pages.",
					},
					"extract_depth": map[string]any{
						"type":        "string",
						"description": "Extraction depth: 'basic' or 'advanced' (tables and embedded content).",
					},
					"format": map[string]any{
						"type":        "string",
						"description": "Output format: 'markdown' or 'text'.",
					},
				},
				"required": []string{"urls"},
			})

	case KindRunSubagent:
		return funcDef("run_subagent",
			"Synchronously run a short-lived specialized sub-agent to complete a single, "+
				"well-scoped research subtask. The sub-agent can search and extract web content "+
				"and returns a consolidated sub-report when done.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"prompt": map[string]any{
						"type":        "string",
						"description": "Instructions for the sub-agent: role, scope, constraints.",
					},
					"agent_id": map[string]any{
						"type":        "string",
						"description": "A unique snake_case id describing the sub-agent's task, e.g. market_research_agent.",
					},
				},
				"required": []string{"prompt", "agent_id"},
			})

	case KindSavePlan:
		return funcDef("save_research_plan",
			"Save the research plan as a markdown artifact in the session directory.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"research_plan": map[string]any{
						"type":        "string",
						"description": "The research plan content in markdown.",
					},
				},
				"required": []string{"research_plan"},
			})

	case KindCompleteTask:
		return funcDef("complete_task",
			"Signal that the research task is complete and deliver the final report. "+
				"Use this once the plan is executed, evidence is gathered, and the synthesis "+
				"is ready for the user.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"final_report": map[string]any{
						"type":        "string",
						"description": "The final report, ready to deliver to the user.",
					},
				},
				"required": []string{"final_report"},
			})

	case KindCompleteSubTask:
		return funcDef("complete_sub_task",
			"Signal that the delegated sub-task is complete and hand the consolidated "+
				"sub-report back to the lead agent.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sub_report": map[string]any{
						"type":        "string",
						"description": "Sub-task report covering findings, sources, and recommendations.",
					},
				},
				"required": []string{"sub_report"},
			})
	}

	return provider.ToolDef{}
}

func funcDef(name, description string, parameters map[string]any) provider.ToolDef {
	return provider.ToolDef{
		Type: "function",
		Function: provider.FunctionDef{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}
