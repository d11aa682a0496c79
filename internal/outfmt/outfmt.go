// Package outfmt prints command results as JSON, optionally filtered
// through a jq expression (--query).
package outfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/itchyny/gojq"
)

// Printer writes pretty-printed JSON to one destination.
type Printer struct {
	w     io.Writer
	query string
}

// NewPrinter creates a Printer. An empty query means plain JSON output.
func NewPrinter(w io.Writer, query string) *Printer {
	return &Printer{w: w, query: query}
}

// Print outputs data as indented JSON. With a query set, the data is
// run through the compiled jq program and each result is printed on its
// own line, matching jq's behavior.
func (p *Printer) Print(data any) error {
	if p.query == "" {
		enc := json.NewEncoder(p.w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	parsed, err := gojq.Parse(p.query)
	if err != nil {
		return fmt.Errorf("invalid --query: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return fmt.Errorf("invalid --query: %w", err)
	}

	// gojq operates on plain JSON values, so structs round-trip through
	// encoding/json first
	normalized, err := normalize(data)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)

	iter := code.Run(normalized)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if qerr, isErr := v.(error); isErr {
			return fmt.Errorf("query error: %w", qerr)
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

func normalize(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("normalizing result: %w", err)
	}
	return v, nil
}
