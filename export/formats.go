// Package export writes property graphs as node-link JSON or as RDF.
package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatNodeLink produces node-link JSON (.json).
	FormatNodeLink Format = "nodelink"

	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatNodeLink: {
		Name:        FormatNodeLink,
		MIMEType:    "application/json",
		Extension:   ".json",
		Description: "Node-link JSON - directed multigraph with node and link attributes",
	},
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// Formats returns the registered format names in sorted order.
func Formats() []string {
	names := make([]string, 0, len(FormatRegistry))
	for f := range FormatRegistry {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// ParseFormat resolves a format by name or file extension. An empty name selects
// node-link JSON.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return FormatNodeLink, nil
	}
	for f, info := range FormatRegistry {
		if name == string(f) || name == info.Extension || "."+name == info.Extension {
			return f, nil
		}
	}
	if name == "json" || name == "node-link" {
		return FormatNodeLink, nil
	}
	return "", fmt.Errorf("unsupported format: %s (valid: %s)", name, strings.Join(Formats(), ", "))
}

// FormatForPath picks the format matching a file extension, defaulting to node-link JSON.
func FormatForPath(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	for f, info := range FormatRegistry {
		if info.Extension == ext {
			return f
		}
	}
	return FormatNodeLink
}
