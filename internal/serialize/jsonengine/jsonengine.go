// Package jsonengine implements serialize.Engine over encoding/json,
// spec.md §4.5/§6.
package jsonengine

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/lmapcloud/lmapd/internal/model"
	"github.com/lmapcloud/lmapd/internal/serialize"
)

// Engine is the JSON serialize.Engine implementation. The zero value is
// ready to use; it carries no mutable state (spec.md §9's anti-pattern
// fix — scope is threaded per call, not stored here).
type Engine struct{}

var _ serialize.Engine = Engine{}

func (Engine) Kind() string { return "json" }

func (Engine) ParseConfig(r io.Reader, m *model.Model) error {
	return parseDoc(r, m, serialize.ScopeConfig)
}

func (Engine) ParseState(r io.Reader, m *model.Model) error {
	return parseDoc(r, m, serialize.ScopeState)
}

func (Engine) ParseReport(r io.Reader, m *model.Model) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("jsonengine: parse report: %w", err)
	}

	var wrapper struct {
		Report *serialize.ReportDocument `json:"report"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return fmt.Errorf("jsonengine: parse report: %w", err)
	}
	doc := wrapper.Report
	if doc == nil {
		// No "report" wrapper key: decode the input as a bare report object.
		doc = &serialize.ReportDocument{}
		if err := json.Unmarshal(raw, doc); err != nil {
			return fmt.Errorf("jsonengine: parse report: %w", err)
		}
	}
	serialize.MergeReportInto(doc, m)
	return nil
}

func (Engine) RenderConfig(m *model.Model) (string, error) {
	return renderDoc(serialize.FromModel(m, serialize.ScopeConfig), "lmap")
}

func (Engine) RenderState(m *model.Model) (string, error) {
	return renderDoc(serialize.FromModel(m, serialize.ScopeState), "lmap")
}

func (Engine) RenderReport(m *model.Model) (string, error) {
	return renderDoc(serialize.ReportFromModel(m), "report")
}

// ParseTaskResults decodes a JSON-formatted task result payload: a bare
// array of rows (each an array of string values), the JSON equivalent
// of the CSV default path, spec.md §4.4.
func (Engine) ParseTaskResults(r io.Reader, res *model.Result) error {
	var rows [][]string
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return fmt.Errorf("jsonengine: parse task results: %w", err)
	}
	tab := &model.Table{}
	for _, row := range rows {
		tab.Rows = append(tab.Rows, model.Row{Values: row})
	}
	res.Tables = append(res.Tables, tab)
	return nil
}

func parseDoc(r io.Reader, m *model.Model, scope serialize.Scope) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("jsonengine: parse: %w", err)
	}

	var wrapper struct {
		Doc *serialize.Document `json:"lmap"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return fmt.Errorf("jsonengine: parse: %w", err)
	}
	doc := wrapper.Doc
	if doc == nil {
		// No "lmap" wrapper key: decode the input as a bare container object.
		doc = &serialize.Document{}
		if err := json.Unmarshal(raw, doc); err != nil {
			return fmt.Errorf("jsonengine: parse: %w", err)
		}
	}
	return serialize.MergeInto(doc, m, scope)
}

func renderDoc(v any, rootName string) (string, error) {
	wrapper := map[string]any{rootName: v}
	b, err := json.MarshalIndent(wrapper, "", "  ")
	if err != nil {
		return "", fmt.Errorf("jsonengine: render: %w", err)
	}
	return string(b), nil
}
