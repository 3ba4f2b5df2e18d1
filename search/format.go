package search

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// truncate cuts s to at most limit bytes, backing off to a rune boundary
// so a multi-byte character is never split at the cut.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// FormatSearchResults renders a search response into the readable block
// the agents see as the tool result.
func FormatSearchResults(resp *SearchResponse) string {
	if resp == nil || len(resp.Results) == 0 {
		return "No relevant search results found."
	}

	var parts []string
	if resp.Answer != "" {
		parts = append(parts, fmt.Sprintf("**Direct Answer:** %s\n", resp.Answer))
	}
	parts = append(parts, "**Search Results:**")

	for i, r := range resp.Results {
		title := r.Title
		if title == "" {
			title = "No title"
		}
		url := r.URL
		if url == "" {
			url = "No URL"
		}
		text := fmt.Sprintf("%d. **%s**\n   URL: %s\n", i+1, title, url)
		if r.Content != "" {
			content := r.Content
			if len(content) > searchContentLimit {
				content = truncate(content, searchContentLimit) + "..."
			}
			text += fmt.Sprintf("   Content: %s\n", content)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n")
}

// FormatExtractResults renders an extract response, listing per-URL
// content and a trailing section for failed URLs.
func FormatExtractResults(resp *ExtractResponse) string {
	if resp == nil || len(resp.Results) == 0 {
		return "No content could be extracted from the provided URLs."
	}

	var parts []string
	for _, r := range resp.Results {
		url := r.URL
		if url == "" {
			url = "Unknown URL"
		}
		parts = append(parts, fmt.Sprintf("**Content from %s:**", url))
		if r.RawContent != "" {
			content := r.RawContent
			if len(content) > extractContentLimit {
				content = truncate(content, extractContentLimit) + "\n\n[Content truncated due to length...]"
			}
			parts = append(parts, content)
		} else {
			parts = append(parts, "No content available.")
		}
		parts = append(parts, "")
	}

	if len(resp.FailedResults) > 0 {
		parts = append(parts, "**Failed Extractions:**")
		for _, f := range resp.FailedResults {
			url := f.URL
			if url == "" {
				url = "Unknown URL"
			}
			errText := f.Error
			if errText == "" {
				errText = "Unknown error"
			}
			parts = append(parts, fmt.Sprintf("- %s: %s", url, errText))
		}
	}
	return strings.Join(parts, "\n")
}
