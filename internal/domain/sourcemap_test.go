package domain

import (
	"encoding/json"
	"testing"

	m "github.com/mouse-blink/scenario/internal/model"
)

func TestEncodeSourceMap(t *testing.T) {
	pm := &m.PositionMap{
		File: "spec/app.scenario.js",
		Mappings: []m.Mapping{
			{OutLine: 1, OutCol: 0, InLine: 1, InCol: 0},
			{OutLine: 2, OutCol: 0, InLine: 3, InCol: 0},
		},
	}

	doc, err := EncodeSourceMap(pm, []byte("original"))
	if err != nil {
		t.Fatalf("EncodeSourceMap error: %v", err)
	}

	var decoded struct {
		Version        int      `json:"version"`
		File           string   `json:"file"`
		Sources        []string `json:"sources"`
		SourcesContent []string `json:"sourcesContent"`
		Mappings       string   `json:"mappings"`
	}

	if err := json.Unmarshal(doc, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if decoded.Version != 3 {
		t.Errorf("version = %d, want 3", decoded.Version)
	}

	if decoded.File != "app.scenario.js" {
		t.Errorf("file = %q", decoded.File)
	}

	if len(decoded.Sources) != 1 || decoded.Sources[0] != "spec/app.scenario.js" {
		t.Errorf("sources = %v", decoded.Sources)
	}

	if len(decoded.SourcesContent) != 1 || decoded.SourcesContent[0] != "original" {
		t.Errorf("sourcesContent = %v", decoded.SourcesContent)
	}

	// Line 1 maps 0->1:0; line 2 maps 0->3:0, an input-line delta of 2.
	if decoded.Mappings != "AAAA;AAEA" {
		t.Errorf("mappings = %q, want %q", decoded.Mappings, "AAAA;AAEA")
	}
}

func TestEncodeMappings_ColumnDeltasResetPerLine(t *testing.T) {
	got := encodeMappings([]m.Mapping{
		{OutLine: 1, OutCol: 0, InLine: 1, InCol: 0},
		{OutLine: 1, OutCol: 4, InLine: 1, InCol: 8},
		{OutLine: 2, OutCol: 2, InLine: 2, InCol: 2},
	})

	// Second segment on line 1: +4 out, +8 in-col. Line 2 restarts the output
	// column from absolute 2 while input deltas stay cumulative.
	want := "AAAA,IAAQ;EACN"
	if got != want {
		t.Errorf("mappings = %q, want %q", got, want)
	}
}

func TestAppendVLQ_NegativeValues(t *testing.T) {
	got := encodeMappings([]m.Mapping{
		{OutLine: 1, OutCol: 0, InLine: 5, InCol: 0},
		{OutLine: 1, OutCol: 1, InLine: 1, InCol: 0},
	})

	// The second segment steps the input line back by 4.
	want := "AAIA,CAJA"
	if got != want {
		t.Errorf("mappings = %q, want %q", got, want)
	}
}
