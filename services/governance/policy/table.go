// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package policy holds the read-only disposition table consumed by the
// decision engine.
//
// The table maps (risk level, content type) pairs to an Action. It is
// loaded from YAML at process start (a default table is embedded in
// the binary) and may be hot-reloaded through a Watcher. Nothing in
// this core mutates a loaded table.
package policy

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bimsrama/relasi4warna-governance/services/governance/risk"
)

// defaultTable holds the raw bytes of the shipped policy table.
//
//go:embed default_policy.yaml
var defaultTable []byte

// =============================================================================
// Actions
// =============================================================================

// Action is the disposition the decision engine applies to content.
type Action string

const (
	// ActionAllow releases the content automatically.
	ActionAllow Action = "allow"

	// ActionEnqueue withholds the content and queues it for human
	// review.
	ActionEnqueue Action = "enqueue"

	// ActionBlock refuses the content outright. Blocked content is not
	// awaiting review.
	ActionBlock Action = "block"
)

// String returns the string representation.
func (a Action) String() string {
	return string(a)
}

// Valid reports whether the action is one of the known values.
func (a Action) Valid() bool {
	switch a {
	case ActionAllow, ActionEnqueue, ActionBlock:
		return true
	default:
		return false
	}
}

// UnmarshalYAML validates the action while decoding configuration.
func (a *Action) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	incoming := Action(s)
	if !incoming.Valid() {
		return fmt.Errorf("invalid value for Action: %q", incoming)
	}
	*a = incoming
	return nil
}

// =============================================================================
// Table
// =============================================================================

// Rule is one row of the policy file.
type Rule struct {
	Level       risk.Level `yaml:"level"`
	ContentType string     `yaml:"content_type"`
	Action      Action     `yaml:"action"`
}

// tableFile is the on-disk shape of the policy configuration.
type tableFile struct {
	Rules []Rule `yaml:"policies"`
}

// Table is an immutable (level, content type) -> Action mapping.
//
// Thread Safety: Table is read-only after Load and safe for concurrent
// use.
type Table struct {
	rules map[risk.Level]map[string]Action
}

// Load parses and validates a policy table from YAML bytes.
//
// Description:
//
//	Rejects empty tables, duplicate rows, and any row mapping
//	LevelCritical to ActionAllow. The critical/allow rejection at load
//	time is the first layer of the defense-in-depth rule; the decision
//	engine enforces the same invariant again at decide time in case a
//	table reaches it by another path.
//
// Inputs:
//
//	data - Raw YAML bytes.
//
// Outputs:
//
//	*Table - The validated table.
//	error - *ConfigError if the file is malformed.
func Load(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &ConfigError{Reason: "unmarshal policy file", Err: err}
	}
	if len(file.Rules) == 0 {
		return nil, &ConfigError{Reason: "empty file", Err: ErrEmptyTable}
	}

	rules := make(map[risk.Level]map[string]Action)
	for _, rule := range file.Rules {
		if rule.ContentType == "" {
			return nil, &ConfigError{Reason: "rule with empty content type"}
		}
		if rule.Level == risk.LevelCritical && rule.Action == ActionAllow {
			return nil, &ConfigError{
				Reason: "content type " + rule.ContentType,
				Err:    ErrCriticalAllow,
			}
		}
		byType, ok := rules[rule.Level]
		if !ok {
			byType = make(map[string]Action)
			rules[rule.Level] = byType
		}
		if _, dup := byType[rule.ContentType]; dup {
			return nil, &ConfigError{
				Reason: fmt.Sprintf("duplicate rule for level %s and content type %s",
					rule.Level, rule.ContentType),
			}
		}
		byType[rule.ContentType] = rule.Action
	}

	return &Table{rules: rules}, nil
}

// LoadFile parses and validates a policy table from a file on disk.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Reason: "read policy file " + path, Err: err}
	}
	return Load(data)
}

// LoadDefault parses the policy table embedded in the binary.
func LoadDefault() (*Table, error) {
	return Load(defaultTable)
}

// Lookup returns the configured action for a (level, content type)
// pair.
//
// Description:
//
//	Deterministic map lookup. A missing combination is a configuration
//	defect and fails with *GapError; the table never defaults to allow.
//
// Inputs:
//
//	level - The assessed risk level.
//	contentType - The content type being dispositioned.
//
// Outputs:
//
//	Action - The configured action.
//	error - *GapError if the pair has no configured action.
func (t *Table) Lookup(level risk.Level, contentType string) (Action, error) {
	if byType, ok := t.rules[level]; ok {
		if action, ok := byType[contentType]; ok {
			return action, nil
		}
	}
	return "", &GapError{Level: level, ContentType: contentType}
}

// ContentTypes returns the distinct content types the table covers.
func (t *Table) ContentTypes() []string {
	seen := make(map[string]bool)
	var types []string
	for _, byType := range t.rules {
		for contentType := range byType {
			if !seen[contentType] {
				seen[contentType] = true
				types = append(types, contentType)
			}
		}
	}
	return types
}

// =============================================================================
// Providers
// =============================================================================

// Provider supplies the current policy table to the decision engine.
//
// The indirection exists so deployments can hot-reload the table
// without restarting, while tests pin a static table.
type Provider interface {
	// Current returns the active table. Never nil.
	Current() *Table
}

// StaticProvider is a Provider that always returns the same table.
type StaticProvider struct {
	table *Table
}

// NewStaticProvider wraps a fixed table in a Provider.
func NewStaticProvider(table *Table) *StaticProvider {
	return &StaticProvider{table: table}
}

// Current implements Provider.
func (p *StaticProvider) Current() *Table {
	return p.table
}
