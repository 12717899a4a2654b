// Package xmlengine implements serialize.Engine over encoding/xml,
// spec.md §4.5/§6.
package xmlengine

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/lmapcloud/lmapd/internal/model"
	"github.com/lmapcloud/lmapd/internal/serialize"
)

// The control and report root element names: the two XML element names
// accepted for each document on input: the bare name and the YANG-prefixed form,
// spec.md §6. Output always uses the prefixed form.
const (
	controlLocalName   = "lmap"
	controlPrefixedName = "ietf-lmap-control:lmap"
	reportLocalName     = "report"
	reportPrefixedName  = "ietf-lmap-report:report"
)

// Engine is the XML serialize.Engine implementation.
type Engine struct{}

var _ serialize.Engine = Engine{}

func (Engine) Kind() string { return "xml" }

func (Engine) ParseConfig(r io.Reader, m *model.Model) error {
	return parseDoc(r, m, serialize.ScopeConfig)
}

func (Engine) ParseState(r io.Reader, m *model.Model) error {
	return parseDoc(r, m, serialize.ScopeState)
}

func (Engine) ParseReport(r io.Reader, m *model.Model) error {
	var doc serialize.ReportDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("xmlengine: parse report: %w", err)
	}
	serialize.MergeReportInto(&doc, m)
	return nil
}

func (Engine) RenderConfig(m *model.Model) (string, error) {
	doc := serialize.FromModel(m, serialize.ScopeConfig)
	doc.XMLName = xml.Name{Local: controlPrefixedName}
	return renderDoc(doc)
}

func (Engine) RenderState(m *model.Model) (string, error) {
	doc := serialize.FromModel(m, serialize.ScopeState)
	doc.XMLName = xml.Name{Local: controlPrefixedName}
	return renderDoc(doc)
}

func (Engine) RenderReport(m *model.Model) (string, error) {
	doc := serialize.ReportFromModel(m)
	doc.XMLName = xml.Name{Local: reportPrefixedName}
	return renderDoc(doc)
}

// ParseTaskResults decodes an XML-formatted task result payload: a
// <rows><row><value>...</value>...</row>...</rows> document, the XML
// equivalent of the CSV default path, spec.md §4.4.
func (Engine) ParseTaskResults(r io.Reader, res *model.Result) error {
	var payload struct {
		Rows []struct {
			Values []string `xml:"value"`
		} `xml:"row"`
	}
	if err := xml.NewDecoder(r).Decode(&payload); err != nil {
		return fmt.Errorf("xmlengine: parse task results: %w", err)
	}
	tab := &model.Table{}
	for _, row := range payload.Rows {
		tab.Rows = append(tab.Rows, model.Row{Values: row.Values})
	}
	res.Tables = append(res.Tables, tab)
	return nil
}

// parseDoc decodes r into a Document, accepting either the bare "lmap"
// element name or the prefixed "ietf-lmap-control:lmap" form — the
// stdlib decoder matches by local name regardless of prefix by default,
// so both forms decode into the same struct without extra handling.
func parseDoc(r io.Reader, m *model.Model, scope serialize.Scope) error {
	var doc serialize.Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("xmlengine: parse: %w", err)
	}
	return serialize.MergeInto(&doc, m, scope)
}

// renderDoc marshals v, whose XMLName field has already been set to the
// YANG-prefixed root element name, spec.md §6.
func renderDoc(v any) (string, error) {
	b, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("xmlengine: render: %w", err)
	}
	return xml.Header + string(b) + "\n", nil
}
