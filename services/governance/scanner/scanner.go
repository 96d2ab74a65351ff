// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package scanner matches submitted or generated text against
// per-language risk term lexicons.
//
// Scanning is a pure function of (text, language, lexicon table): no
// I/O, no side effects, same input always yields the same signal set.
// That determinism is what makes risk decisions testable and auditable
// after the fact.
//
// Thread Safety:
//
//	Scanner is safe for concurrent use; lexicons are read-only after
//	construction.
package scanner

import (
	"os"
	"strings"

	"github.com/bimsrama/relasi4warna-governance/services/governance/risk"
)

// Scanner matches text against compiled per-language lexicons.
type Scanner struct {
	lexicons map[string]Lexicon
}

// New creates a Scanner from a parsed lexicon file.
//
// Inputs:
//
//	file - Validated lexicon configuration. Must not be nil or empty.
//
// Outputs:
//
//	*Scanner - The scanner, ready for concurrent use.
//	error - *ConfigError if the configuration is unusable.
func New(file *LexiconFile) (*Scanner, error) {
	if file == nil || len(file.Lexicons) == 0 {
		return nil, &ConfigError{Reason: "no lexicons provided", Err: ErrNoLexicons}
	}

	lexicons := make(map[string]Lexicon, len(file.Lexicons))
	for _, lexicon := range file.Lexicons {
		lexicons[lexicon.Language] = lexicon
	}
	return &Scanner{lexicons: lexicons}, nil
}

// NewDefault creates a Scanner from the embedded lexicon file.
func NewDefault() (*Scanner, error) {
	file, err := DefaultLexicons()
	if err != nil {
		return nil, err
	}
	return New(file)
}

// NewFromFile creates a Scanner from a lexicon file on disk.
//
// Intended for deployments that override the embedded term lists.
func NewFromFile(path string) (*Scanner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Reason: "read lexicon file " + path, Err: err}
	}
	file, err := ParseLexicons(data)
	if err != nil {
		return nil, err
	}
	return New(file)
}

// Languages returns the language tags the scanner supports.
func (s *Scanner) Languages() []string {
	languages := make([]string, 0, len(s.lexicons))
	for language := range s.lexicons {
		languages = append(languages, language)
	}
	return languages
}

// Scan matches text against the lexicon for the given language.
//
// Description:
//
//	Matching is case-insensitive and substring-based. Multiple distinct
//	categories may match the same text. Duplicate matches of the
//	identical term within one scan are deduplicated so a repeated
//	keyword cannot inflate the score; distinct terms in the same
//	category all count. Output order follows lexicon order, so two
//	scans of the same input produce identical signal sequences.
//
// Inputs:
//
//	text - Arbitrary UTF-8 text. Empty text yields no signals.
//	language - Language tag. Must name a configured lexicon.
//
// Outputs:
//
//	[]risk.Signal - Matched signals in lexicon order. Nil when nothing
//	matched.
//	error - *ConfigError wrapping ErrUnsupportedLanguage for unknown
//	language tags. There is no silent fallback to a default lexicon.
func (s *Scanner) Scan(text, language string) ([]risk.Signal, error) {
	lexicon, ok := s.lexicons[language]
	if !ok {
		return nil, &ConfigError{
			Reason: "language " + language,
			Err:    ErrUnsupportedLanguage,
		}
	}

	if text == "" {
		return nil, nil
	}
	lowered := strings.ToLower(text)

	var signals []risk.Signal
	matched := make(map[string]bool)
	for _, list := range lexicon.Categories {
		for _, term := range list.Terms {
			if matched[term] {
				continue
			}
			if strings.Contains(lowered, term) {
				matched[term] = true
				signals = append(signals, risk.Signal{
					Category:    list.Category,
					MatchedTerm: term,
					Weight:      list.Weight,
				})
			}
		}
	}
	return signals, nil
}
