// Package format renders CLI payloads as JSON or EDN.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formats lists the accepted --format values.
var Formats = []string{"json", "edn"}

// Validate normalizes a --format value.
func Validate(format string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	switch f {
	case "":
		return "json", nil
	case "json", "edn":
		return f, nil
	default:
		return "", fmt.Errorf("unknown format: %q (expected %s)", format, strings.Join(Formats, "|"))
	}
}

// Write renders v in the requested format, followed by a newline.
func Write(w io.Writer, v any, format string, pretty bool) error {
	f, err := Validate(format)
	if err != nil {
		return err
	}
	if f == "edn" {
		return WriteEDN(w, v, pretty)
	}
	return WriteJSON(w, v, pretty)
}

func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
