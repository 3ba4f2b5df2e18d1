package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/deepscout/deepscout/logger"
	"github.com/deepscout/deepscout/search"
)

// webSearchTool runs a Tavily search and formats the results for the
// model.
type webSearchTool struct {
	client *search.Client
}

func (t *webSearchTool) execute(ctx context.Context, args map[string]any, call CallContext) (*Envelope, error) {
	if t.client == nil {
		return nil, errors.New("search client is not configured")
	}

	query := stringArg(args, "query", "")
	opts := search.SearchOptions{
		Depth:             stringArg(args, "search_depth", ""),
		MaxResults:        intArg(args, "max_results", 5),
		IncludeAnswer:     boolArg(args, "include_answer"),
		IncludeRawContent: boolArg(args, "include_raw_content"),
		IncludeDomains:    stringSliceArg(args, "include_domains"),
		ExcludeDomains:    stringSliceArg(args, "exclude_domains"),
	}

	logger.Debug("web_search", "agent", call.AgentID, "step", call.StepIndex, "query", query)
	resp, err := t.client.Search(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	header := fmt.Sprintf("Search Results for: '%s' (%d results", query, len(resp.Results))
	if resp.Answer != "" {
		header += ", includes AI answer"
	}
	header += ")\n\n"

	return &Envelope{
		Success:          true,
		ToolName:         string(KindWebSearch),
		FormattedContent: header + search.FormatSearchResults(resp),
		Raw:              resp,
	}, nil
}

// webExtractTool pulls full page content from a list of URLs.
type webExtractTool struct {
	client *search.Client
}

func (t *webExtractTool) execute(ctx context.Context, args map[string]any, call CallContext) (*Envelope, error) {
	if t.client == nil {
		return nil, errors.New("search client is not configured")
	}

	urls := stringSliceArg(args, "urls")
	opts := search.ExtractOptions{
		Depth:         stringArg(args, "extract_depth", ""),
		Format:        stringArg(args, "format", ""),
		IncludeImages: boolArg(args, "include_images"),
	}

	logger.Debug("web_extract", "agent", call.AgentID, "step", call.StepIndex, "urls", len(urls))
	resp, err := t.client.Extract(ctx, urls, opts)
	if err != nil {
		return nil, err
	}

	header := fmt.Sprintf("Content Extraction from %d URL(s) (%d successful, %d failed)\n\n",
		len(urls), len(resp.Results), len(resp.FailedResults))

	return &Envelope{
		Success:          true,
		ToolName:         string(KindWebExtract),
		FormattedContent: header + search.FormatExtractResults(resp),
		Raw:              resp,
	}, nil
}
