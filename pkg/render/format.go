package render

import (
	"fmt"
	"strings"
)

// Format identifies a render output.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatDOT  Format = "dot"
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
)

// Formats lists every supported format in display order.
var Formats = []Format{FormatJSON, FormatDOT, FormatSVG, FormatPNG}

// ParseFormat parses a case-insensitive format name. A leading dot is
// accepted so file extensions can be passed directly.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q (want json, dot, svg or png)", s)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

// Extension returns the file extension, with the leading dot.
func (f Format) Extension() string {
	if f == FormatDOT {
		return ".gv"
	}
	return "." + string(f)
}

// IsImage reports whether rendering the format requires Graphviz.
func (f Format) IsImage() bool {
	return f == FormatSVG || f == FormatPNG
}
