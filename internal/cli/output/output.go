// Package output renders command results as a table, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeTable Mode = "table"
	ModeJSON  Mode = "json"
	ModeYAML  Mode = "yaml"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeTable:
		return ModeTable, nil
	case ModeJSON:
		return ModeJSON, nil
	case ModeYAML, "yml":
		return ModeYAML, nil
	}

	return "", fmt.Errorf("Output format %q is invalid, must be one of table, json, yaml", s)
}

// Table is the tabular view of a result.
type Table struct {
	Header table.Row
	Rows   []table.Row
	Footer table.Row
}

type Renderer struct {
	out  io.Writer
	mode Mode
}

func NewRenderer(out io.Writer, mode Mode) *Renderer {
	return &Renderer{out: out, mode: mode}
}

func (r *Renderer) Mode() Mode {
	return r.mode
}

// Render writes v in JSON or YAML mode and view in table mode.
func (r *Renderer) Render(v any, view Table) error {
	switch r.mode {
	case ModeJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case ModeYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		err := enc.Encode(v)
		if err != nil {
			return err
		}

		return enc.Close()
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	if len(view.Header) > 0 {
		t.AppendHeader(view.Header)
	}

	for _, row := range view.Rows {
		t.AppendRow(row)
	}

	if len(view.Footer) > 0 {
		t.AppendFooter(view.Footer)
	}

	t.Render()
	return nil
}

// Message prints a one-line confirmation in table mode and {"message": msg} otherwise.
func (r *Renderer) Message(msg string) error {
	if r.mode == ModeTable {
		_, err := fmt.Fprintln(r.out, msg)
		return err
	}

	return r.Render(map[string]string{"message": msg}, Table{})
}
