package dictionary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Record matches the structure of word-list entries (HSK files and the
// personal list share the same shape).
type Record struct {
	ID           int      `json:"id" yaml:"id"`
	ScriptForm   string   `json:"hanzi" yaml:"hanzi"`
	PhoneticForm string   `json:"pinyin" yaml:"pinyin"`
	Translations []string `json:"translations" yaml:"translations"`
}

// List is the parsed content of one word-list.
type List struct {
	ID      string
	Records []Record
}

// Format selects the decoder used by ParseList.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatForPath picks a Format from a file name extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// ParseList decodes list content. Both a bare array and a {"words": [...]}
// wrapper are accepted.
func ParseList(data []byte, format Format) ([]Record, error) {
	if format == FormatYAML {
		return parseYAML(data)
	}

	var wrapped struct {
		Words []Record `json:"words"`
	}
	// Try parsing as full object wrapper first { "words": [...] }
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("parse list object: %w", err)
		}
		return wrapped.Words, nil
	}

	var records []Record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("failed to parse list as object or array: %w", err)
	}
	return records, nil
}

func parseYAML(data []byte) ([]Record, error) {
	var records []Record
	if err := yaml.Unmarshal(data, &records); err == nil {
		return records, nil
	}
	var wrapped struct {
		Words []Record `yaml:"words"`
	}
	if err := yaml.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse yaml list: %w", err)
	}
	return wrapped.Words, nil
}

// LoadList reads a list file from disk.
func LoadList(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseList(data, FormatForPath(path))
}
