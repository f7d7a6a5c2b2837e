package rdfexport

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/semgraph/convert"
	"github.com/c360studio/semgraph/storage"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "semgraph",
		Category:    "export-request",
		Version:     "v1",
		Description: "Request for a stored graph snapshot",
		Factory:     func() any { return &ExportRequest{} },
	})
	if err != nil {
		panic("failed to register ExportRequest: " + err.Error())
	}
}

// ExportRequestType is the message type for export requests.
var ExportRequestType = message.Type{Domain: "semgraph", Category: "export-request", Version: "v1"}

// Export actions.
const (
	ActionGet    = "get"
	ActionList   = "list"
	ActionDelete = "delete"
)

// ExportRequest asks for one snapshot, the snapshot listing, or a deletion.
type ExportRequest struct {
	// Action is get (default), list or delete.
	Action     string `json:"action,omitempty"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Format     string `json:"format,omitempty"`
	Profile    string `json:"profile,omitempty"`
	Indent     bool   `json:"indent,omitempty"`
}

// Schema returns the message type for Payload interface.
func (r *ExportRequest) Schema() message.Type { return ExportRequestType }

// Validate validates the request.
func (r *ExportRequest) Validate() error {
	switch r.action() {
	case ActionList:
		return nil
	case ActionGet, ActionDelete:
		if r.SnapshotID == "" {
			return errors.New("snapshot_id is required")
		}
		return nil
	}
	return fmt.Errorf("unknown action %q (valid: get, list, delete)", r.Action)
}

func (r *ExportRequest) action() string {
	if r.Action == "" {
		return ActionGet
	}
	return r.Action
}

// MarshalJSON implements json.Marshaler.
func (r *ExportRequest) MarshalJSON() ([]byte, error) {
	type Alias ExportRequest
	return json.Marshal((*Alias)(r))
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ExportRequest) UnmarshalJSON(data []byte) error {
	type Alias ExportRequest
	return json.Unmarshal(data, (*Alias)(r))
}

// SnapshotSummary describes a stored snapshot without its graph.
type SnapshotSummary struct {
	ID        storage.SnapshotID `json:"id"`
	Source    string             `json:"source,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	Stats     convert.Stats      `json:"stats"`
}

// ExportResponse is the reply to an ExportRequest.
type ExportResponse struct {
	Action     string             `json:"action"`
	SnapshotID storage.SnapshotID `json:"snapshot_id,omitempty"`
	Format     string             `json:"format,omitempty"`
	Profile    string             `json:"profile,omitempty"`
	Content    string             `json:"content,omitempty"`
	Snapshots  []SnapshotSummary  `json:"snapshots,omitempty"`
	Deleted    bool               `json:"deleted,omitempty"`
	Error      string             `json:"error,omitempty"`
}
