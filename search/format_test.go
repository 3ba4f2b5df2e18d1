package search

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFormatSearchResultsEmpty(t *testing.T) {
	if got := FormatSearchResults(nil); got != "No relevant search results found." {
		t.Fatalf("nil response formatted as %q", got)
	}
	if got := FormatSearchResults(&SearchResponse{}); !strings.Contains(got, "No relevant") {
		t.Fatalf("empty response formatted as %q", got)
	}
}

func TestFormatSearchResultsTruncatesLongSnippets(t *testing.T) {
	long := strings.Repeat("x", searchContentLimit+100)
	out := FormatSearchResults(&SearchResponse{
		Answer: "short answer",
		Results: []SearchResult{
			{Title: "Long page", URL: "https://example.com", Content: long},
		},
	})
	if !strings.Contains(out, "**Direct Answer:** short answer") {
		t.Fatalf("answer missing: %q", out)
	}
	if strings.Contains(out, long) {
		t.Fatal("long snippet was not truncated")
	}
	if !strings.Contains(out, strings.Repeat("x", searchContentLimit)+"...") {
		t.Fatal("truncation marker missing")
	}
}

func TestFormatSearchResultsTruncatesOnRuneBoundary(t *testing.T) {
	// 界 is three bytes, so the byte limit falls mid-rune and the cut
	// must back off instead of emitting an invalid sequence.
	long := strings.Repeat("界", searchContentLimit/3+50)
	out := FormatSearchResults(&SearchResponse{
		Results: []SearchResult{
			{Title: "CJK page", URL: "https://example.com", Content: long},
		},
	})
	if !utf8.ValidString(out) {
		t.Fatal("truncated output contains an invalid UTF-8 sequence")
	}
	if !strings.Contains(out, "界...") {
		t.Fatalf("truncation marker not preceded by a whole rune: %q", out)
	}
}

func TestFormatExtractResultsTruncationAndFailures(t *testing.T) {
	long := strings.Repeat("y", extractContentLimit+1)
	out := FormatExtractResults(&ExtractResponse{
		Results: []ExtractResult{
			{URL: "https://a.example", RawContent: long},
			{URL: "https://b.example", RawContent: ""},
		},
		FailedResults: []FailedExtract{
			{URL: "https://c.example", Error: "timeout"},
		},
	})
	if !strings.Contains(out, "[Content truncated due to length...]") {
		t.Fatal("extract truncation marker missing")
	}
	if !strings.Contains(out, "No content available.") {
		t.Fatal("empty extraction not reported")
	}
	if !strings.Contains(out, "**Failed Extractions:**") || !strings.Contains(out, "https://c.example: timeout") {
		t.Fatalf("failed URLs not listed: %q", out)
	}
}

func TestFormatExtractResultsEmpty(t *testing.T) {
	out := FormatExtractResults(&ExtractResponse{})
	if !strings.Contains(out, "No content could be extracted") {
		t.Fatalf("empty extract formatted as %q", out)
	}
}
