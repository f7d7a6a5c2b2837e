package rdfconvert

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/semgraph/convert"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "semgraph",
		Category:    "convert-request",
		Version:     "v1",
		Description: "RDF document to convert into a property graph",
		Factory:     func() any { return &ConvertRequest{} },
	})
	if err != nil {
		panic("failed to register ConvertRequest: " + err.Error())
	}
}

// ConvertRequestType is the message type for conversion requests.
var ConvertRequestType = message.Type{Domain: "semgraph", Category: "convert-request", Version: "v1"}

// Conversion modes.
const (
	// ModeProperty runs the node/edge conversion.
	ModeProperty = "property"
	// ModeTerm builds the term graph, one node per RDF term.
	ModeTerm = "term"
)

// CollapseOptions selects the predicates folded into node attributes.
type CollapseOptions struct {
	Predicates []string `json:"predicates,omitempty"`

	// Suggest collapses the literal-only predicates when Predicates is empty.
	Suggest bool `json:"suggest,omitempty"`

	Subjects []string `json:"subjects,omitempty"`

	// ProtectSubjects keeps every subject of the document.
	ProtectSubjects bool `json:"protect_subjects,omitempty"`
}

// ConvertRequest asks for one document to be converted.
type ConvertRequest struct {
	Content    string            `json:"content"`
	Format     string            `json:"format,omitempty"`
	Namespaces map[string]string `json:"namespaces,omitempty"`
	Mode       string            `json:"mode,omitempty"`
	Collapse   *CollapseOptions  `json:"collapse,omitempty"`

	// OutputFormat overrides the configured output format.
	OutputFormat string `json:"output_format,omitempty"`

	// Source describes where the content came from. Stored with snapshots.
	Source string `json:"source,omitempty"`

	Save    bool `json:"save,omitempty"`
	Publish bool `json:"publish,omitempty"`
}

// Schema returns the message type for Payload interface.
func (r *ConvertRequest) Schema() message.Type { return ConvertRequestType }

// Validate validates the request.
func (r *ConvertRequest) Validate() error {
	if r.Content == "" {
		return errors.New("content is required")
	}
	switch r.Mode {
	case "", ModeProperty, ModeTerm:
	default:
		return fmt.Errorf("unsupported mode: %s (valid: property, term)", r.Mode)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r *ConvertRequest) MarshalJSON() ([]byte, error) {
	type Alias ConvertRequest
	return json.Marshal((*Alias)(r))
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ConvertRequest) UnmarshalJSON(data []byte) error {
	type Alias ConvertRequest
	return json.Unmarshal(data, (*Alias)(r))
}

// ConvertResponse is the reply to a ConvertRequest.
type ConvertResponse struct {
	RunID string        `json:"run_id,omitempty"`
	Mode  string        `json:"mode,omitempty"`
	Stats convert.Stats `json:"stats"`

	// Graph is node-link JSON, set when the output format is nodelink.
	Graph json.RawMessage `json:"graph,omitempty"`

	// Output holds RDF output for the other formats.
	Output string `json:"output,omitempty"`
	Format string `json:"format,omitempty"`

	Collapsed  []string `json:"collapsed,omitempty"`
	SnapshotID string   `json:"snapshot_id,omitempty"`
	Published  int      `json:"published,omitempty"`

	Error string `json:"error,omitempty"`
}
