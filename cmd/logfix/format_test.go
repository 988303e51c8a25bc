package main

import (
	"encoding/json"
	"strings"
	"testing"

	"logfix/internal/report"
	"logfix/internal/rewrite"
)

func TestFormatResponseJSON(t *testing.T) {
	summary := &report.Summary{
		RunID:        "abc12345",
		Root:         "/repo",
		FilesScanned: 2,
		Calls:        rewrite.Tally{Rewritten: 3},
	}

	out, err := FormatResponse(summary, FormatJSON)
	if err != nil {
		t.Fatalf("FormatResponse: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["runId"] != "abc12345" {
		t.Errorf("runId = %v", decoded["runId"])
	}
}

func TestFormatResponseHumanSummary(t *testing.T) {
	summary := &report.Summary{
		RunID:         "abc12345",
		Root:          "/repo",
		DryRun:        true,
		FilesScanned:  5,
		FilesModified: 2,
		Calls:         rewrite.Tally{Rewritten: 4, SkippedMismatch: 1},
	}

	out, err := FormatResponse(summary, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse: %v", err)
	}
	if !strings.Contains(out, "dry run") {
		t.Error("expected dry run marker in human output")
	}
	if !strings.Contains(out, "4 rewritten") {
		t.Errorf("expected call tally in output, got:\n%s", out)
	}
}

func TestFormatResponseHumanFileCount(t *testing.T) {
	summary := &report.Summary{
		RunID:         "abc12345",
		Root:          "/repo",
		FilesScanned:  1,
		FilesModified: 1,
		Calls:         rewrite.Tally{Rewritten: 1},
		Files: []report.FileReport{
			{
				Path:    "src/Order.cs",
				Outcome: "REWRITTEN",
				Tally:   rewrite.Tally{Rewritten: 1},
				Changes: 1,
			},
		},
	}

	out, err := FormatResponse(summary, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse: %v", err)
	}
	if !strings.Contains(out, "src/Order.cs (1 changes)") {
		t.Errorf("rewritten file must report its rewrite count once, got:\n%s", out)
	}
	if strings.Contains(out, "Substitutions:") {
		t.Errorf("rewrite-only summary must not report substitutions, got:\n%s", out)
	}
}

func TestFormatResponseHumanSubstCount(t *testing.T) {
	summary := &report.Summary{
		RunID:         "abc12345",
		Root:          "/repo",
		FilesScanned:  1,
		FilesModified: 1,
		Changes:       3,
		Files: []report.FileReport{
			{Path: "src/Order.cs", Outcome: "REWRITTEN", Changes: 3},
		},
	}

	out, err := FormatResponse(summary, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse: %v", err)
	}
	if !strings.Contains(out, "src/Order.cs (3 changes)") {
		t.Errorf("substituted file must report its rule hits, got:\n%s", out)
	}
	if !strings.Contains(out, "Substitutions: 3") {
		t.Errorf("expected substitution total, got:\n%s", out)
	}
}

func TestFormatResponseHumanScan(t *testing.T) {
	resp := &ScanResponse{
		Root:         "/repo",
		FilesScanned: 1,
		Sites: []SiteInfo{
			{File: "src/Order.cs", Line: 12, Method: "LogError", Outcome: rewrite.Rewritten},
			{File: "src/Order.cs", Line: 30, Method: "LogInfo", Outcome: rewrite.SkippedMismatch, Reason: "2 unbound arguments"},
		},
	}

	out, err := FormatResponse(resp, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse: %v", err)
	}
	if !strings.Contains(out, "src/Order.cs:12 LogError") {
		t.Errorf("expected site line in output, got:\n%s", out)
	}
	if !strings.Contains(out, "2 unbound arguments") {
		t.Error("expected skip reason in output")
	}
}

func TestFormatResponseUnsupported(t *testing.T) {
	if _, err := FormatResponse(struct{}{}, OutputFormat("xml")); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestLineOf(t *testing.T) {
	content := "a\nb\nc\n"
	cases := []struct {
		offset int
		want   int
	}{
		{0, 1},
		{2, 2},
		{4, 3},
		{99, 4},
	}
	for _, tc := range cases {
		if got := lineOf(content, tc.offset); got != tc.want {
			t.Errorf("lineOf(%d) = %d, want %d", tc.offset, got, tc.want)
		}
	}
}
