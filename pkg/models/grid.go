// Package models defines the data structures shared between the report
// engine, the storage layer and the HTTP API.
//
// A Grid is the only shape the UI table widget understands: an ordered list
// of column specs and an ordered list of rows whose keys mirror the columns.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ColumnSpec describes one column of a grid. Name and Data carry the same
// lower-cased key in every report shape.
type ColumnSpec struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// Row is one grid row. Values are held positionally and keyed by the
// grid's column list, so JSON encoding preserves the declared column order.
type Row struct {
	keys   []string
	values []any
}

// NewRow creates a row for the given keys with all values set to nil.
func NewRow(keys []string) Row {
	return Row{keys: keys, values: make([]any, len(keys))}
}

// Keys returns the row's keys in declared order.
func (r Row) Keys() []string {
	return r.keys
}

// Len returns the number of cells in the row.
func (r Row) Len() int {
	return len(r.keys)
}

// Get returns the value for key and whether the key exists.
func (r Row) Get(key string) (any, bool) {
	for i, k := range r.keys {
		if k == key {
			return r.values[i], true
		}
	}
	return nil, false
}

// At returns the value at position i.
func (r Row) At(i int) any {
	return r.values[i]
}

// Set stores value at position i.
func (r Row) Set(i int, value any) {
	r.values[i] = value
}

// MarshalJSON encodes the row as a JSON object with keys in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the row as a mapping node with keys in column order.
func (r Row) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for i, k := range r.keys {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: k}
		val := &yaml.Node{}
		if err := val.Encode(r.values[i]); err != nil {
			return nil, fmt.Errorf("encoding %q: %w", k, err)
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

// Grid is the engine output consumed by the UI table widget.
type Grid struct {
	Domain  string       `json:"domain" yaml:"domain"`
	Columns []ColumnSpec `json:"columns" yaml:"columns"`
	Data    []Row        `json:"data" yaml:"data"`
}

// EmptyGrid returns a grid with no columns and no rows. Slices are non-nil
// so the JSON encoding is [] rather than null.
func EmptyGrid(domain string) *Grid {
	return &Grid{Domain: domain, Columns: []ColumnSpec{}, Data: []Row{}}
}

// WellFormed reports whether every row carries exactly the declared columns
// in the declared order.
func (g *Grid) WellFormed() bool {
	for _, row := range g.Data {
		if row.Len() != len(g.Columns) {
			return false
		}
		for i, k := range row.Keys() {
			if g.Columns[i].Data != k {
				return false
			}
		}
	}
	return true
}
