// Package sne models per-object supernova records as stored in the
// catalog repositories: one JSON file per object, keyed by the object's
// canonical name.
package sne

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/astrotransients/sne-tools/internal/fsutil"
)

// ErrNotSingleObject is returned when a file's top level does not hold
// exactly one object name.
var ErrNotSingleObject = errors.New("record must contain exactly one top-level object")

// Record is one object's data. Fields keeps every metadata value as
// decoded (numbers as json.Number, so they re-encode verbatim); the typed
// slices are views over the photometry, spectra and sources lists.
type Record struct {
	Name       string
	Fields     map[string]any
	Photometry []Photometry
	Spectra    []Spectrum
	Sources    []Source
	Aliases    []string
}

type recordLists struct {
	Photometry []Photometry `json:"photometry"`
	Spectra    []Spectrum   `json:"spectra"`
	Sources    []Source     `json:"sources"`
	Aliases    []Text       `json:"aliases"`
}

// Decode parses the contents of one object file.
func Decode(data []byte) (*Record, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}
	if len(top) != 1 {
		return nil, fmt.Errorf("%w: found %d", ErrNotSingleObject, len(top))
	}

	var name string
	var body json.RawMessage
	for k, v := range top {
		name, body = k, v
	}

	fields := make(map[string]any)
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", name, err)
	}

	var lists recordLists
	if err := json.Unmarshal(body, &lists); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", name, err)
	}

	aliases := make([]string, len(lists.Aliases))
	for i, a := range lists.Aliases {
		aliases[i] = string(a)
	}

	return &Record{
		Name:       name,
		Fields:     fields,
		Photometry: lists.Photometry,
		Spectra:    lists.Spectra,
		Sources:    lists.Sources,
		Aliases:    aliases,
	}, nil
}

// LoadRecord reads and decodes the object file at path.
func LoadRecord(fs fsutil.FileSystem, path string) (*Record, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	rec, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// Field looks up a metadata value.
func (r *Record) Field(key string) (any, bool) {
	v, ok := r.Fields[key]
	return v, ok
}

// Text returns a scalar metadata value in its textual form. Strings are
// returned as-is and numbers in their original notation; any other kind
// of value reports false.
func (r *Record) Text(key string) (string, bool) {
	v, ok := r.Fields[key]
	if !ok {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	default:
		return "", false
	}
}

// Set stores a derived value, replacing any value read from the file.
func (r *Record) Set(key string, value any) {
	r.Fields[key] = value
}

// Row projects the record onto a fixed column list. Absent columns are
// present with a nil value so the encoded row always carries every key.
func (r *Record) Row(columns []string) Row {
	row := make(Row, len(columns))
	for i, col := range columns {
		row[i] = Column{Key: col, Value: r.Fields[col]}
	}
	return row
}
