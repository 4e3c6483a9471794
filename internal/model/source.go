// Package model defines the data structures shared by the scenario transform
// and the suite runtime.
package model

import (
	"path/filepath"
	"strings"
)

// Path represents a file system path.
type Path string

// Language selects the grammar used to parse a scenario file.
type Language string

const (
	// LangJavaScript covers .js and .mjs scenario files.
	LangJavaScript Language = "javascript"
	// LangTypeScript covers .ts scenario files.
	LangTypeScript Language = "typescript"
)

// scenario file suffixes recognized by discovery, in match order.
var scenarioSuffixes = []string{".scenario.js", ".scenario.mjs", ".scenario.ts"}

// Source represents one scenario file queued for transformation.
type Source struct {
	Origin Path
	Hash   string
	Lang   Language
}

// DetectLanguage picks the grammar for a path based on its extension.
func DetectLanguage(path Path) Language {
	if strings.EqualFold(filepath.Ext(string(path)), ".ts") {
		return LangTypeScript
	}

	return LangJavaScript
}

// IsScenarioFile reports whether path follows the scenario naming convention.
func IsScenarioFile(path Path) bool {
	name := strings.ToLower(filepath.Base(string(path)))
	for _, suffix := range scenarioSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}

	return false
}
