// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scanner

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bimsrama/relasi4warna-governance/services/governance/risk"
)

// defaultLexicons holds the raw bytes of the default risk lexicon file.
//
// The file is baked into the binary at compile time so the shipped term
// lists are immutable at runtime and travel with the executable.
// Deployments can still load a replacement file via NewFromFile.
//
//go:embed risk_lexicons.yaml
var defaultLexicons []byte

// LexiconFile is the on-disk shape of the lexicon configuration.
type LexiconFile struct {
	Lexicons []Lexicon `yaml:"lexicons"`
}

// Lexicon is the set of risk term lists for one language.
//
// Lexicons are looked up per language and never merged; a scan only
// ever sees one language's term lists.
type Lexicon struct {
	// Language is the language tag this lexicon applies to, e.g. "en"
	// or "id".
	Language string `yaml:"language"`

	// Categories are the per-category term lists, in file order. Scan
	// output preserves this order, which keeps scans deterministic.
	Categories []TermList `yaml:"categories"`
}

// TermList is one category's terms and their shared weight.
type TermList struct {
	// Category classifies every term in this list.
	Category risk.Category `yaml:"category"`

	// Weight is the severity contribution of each matched term.
	Weight float64 `yaml:"weight"`

	// Terms are matched case-insensitively as substrings.
	Terms []string `yaml:"terms"`
}

// ParseLexicons decodes and validates lexicon configuration bytes.
//
// Description:
//
//	Unmarshals the YAML, lowercases every term (matching is
//	case-insensitive), and rejects empty languages, non-positive
//	weights, and empty term lists. Validation is eager so defects
//	surface at startup, never mid-scan.
//
// Inputs:
//
//	data - Raw YAML bytes.
//
// Outputs:
//
//	*LexiconFile - The validated configuration.
//	error - *ConfigError if the file is malformed.
func ParseLexicons(data []byte) (*LexiconFile, error) {
	var file LexiconFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &ConfigError{Reason: "unmarshal lexicon file", Err: err}
	}
	if len(file.Lexicons) == 0 {
		return nil, &ConfigError{Reason: "empty file", Err: ErrNoLexicons}
	}

	seen := make(map[string]bool, len(file.Lexicons))
	for i := range file.Lexicons {
		lexicon := &file.Lexicons[i]
		if lexicon.Language == "" {
			return nil, &ConfigError{Reason: "lexicon with empty language tag"}
		}
		if seen[lexicon.Language] {
			return nil, &ConfigError{
				Reason: fmt.Sprintf("duplicate lexicon for language %q", lexicon.Language),
			}
		}
		seen[lexicon.Language] = true

		for j := range lexicon.Categories {
			list := &lexicon.Categories[j]
			if list.Weight <= 0 {
				return nil, &ConfigError{
					Reason: fmt.Sprintf("non-positive weight for %s/%s",
						lexicon.Language, list.Category),
				}
			}
			if len(list.Terms) == 0 {
				return nil, &ConfigError{
					Reason: fmt.Sprintf("empty term list for %s/%s",
						lexicon.Language, list.Category),
				}
			}
			for k, term := range list.Terms {
				normalized := strings.ToLower(strings.TrimSpace(term))
				if normalized == "" {
					return nil, &ConfigError{
						Reason: fmt.Sprintf("blank term in %s/%s",
							lexicon.Language, list.Category),
					}
				}
				list.Terms[k] = normalized
			}
		}
	}

	return &file, nil
}

// DefaultLexicons returns the embedded lexicon configuration.
func DefaultLexicons() (*LexiconFile, error) {
	return ParseLexicons(defaultLexicons)
}
