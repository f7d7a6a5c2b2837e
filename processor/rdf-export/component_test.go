package rdfexport

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semgraph/convert"
	"github.com/c360studio/semgraph/pgraph"
	"github.com/c360studio/semgraph/rdf"
	"github.com/c360studio/semgraph/storage"
)

const (
	ex       = "http://example.org/"
	snapshot = "snapshot:6f1c2b9e-3d4a-4c5b-8e7f-0a1b2c3d4e5f"
)

type fakeStore struct {
	snapshots map[storage.SnapshotID]*storage.Snapshot
}

func newFakeStore(t *testing.T) *fakeStore {
	t.Helper()

	g := pgraph.New()
	g.AddNode(ex+"alice", map[string]any{pgraph.KeyIRI: ex + "alice", "foaf:name": "Alice"})
	g.AddNode(ex+"bob", map[string]any{pgraph.KeyIRI: ex + "bob"})
	_, err := g.AddEdge(ex+"alice", ex+"bob", "urn:semgraph:relation:1", map[string]any{pgraph.KeyLabel: "knows"})
	require.NoError(t, err)

	ns := rdf.Namespaces{"base": ex, "foaf": "http://xmlns.com/foaf/0.1/"}
	snap, err := storage.NewSnapshot("people.ttl", g, convert.Stats{Triples: 4, Nodes: 2, Edges: 1}, ns)
	require.NoError(t, err)
	snap.ID = snapshot
	snap.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	return &fakeStore{snapshots: map[storage.SnapshotID]*storage.Snapshot{snap.ID: snap}}
}

func (f *fakeStore) Get(_ context.Context, id storage.SnapshotID) (*storage.Snapshot, error) {
	snap, ok := f.snapshots[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return snap, nil
}

func (f *fakeStore) List(_ context.Context) ([]*storage.Snapshot, error) {
	out := make([]*storage.Snapshot, 0, len(f.snapshots))
	for _, snap := range f.snapshots {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, id storage.SnapshotID) error {
	if _, ok := f.snapshots[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.snapshots, id)
	return nil
}

func newTestComponent(t *testing.T, raw string) (*Component, *fakeStore) {
	t.Helper()
	c, err := NewComponent(json.RawMessage(raw), component.Dependencies{})
	require.NoError(t, err)
	comp := c.(*Component)
	store := newFakeStore(t)
	comp.store = store
	return comp, store
}

func request(t *testing.T, c *Component, data []byte) ExportResponse {
	t.Helper()
	out, err := c.handleRequest(context.Background(), data)
	require.NoError(t, err)

	var resp ExportResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	return resp
}

func requestJSON(t *testing.T, c *Component, req ExportRequest) ExportResponse {
	t.Helper()
	data, err := json.Marshal(&req)
	require.NoError(t, err)
	return request(t, c, data)
}

func TestNewComponentDefaults(t *testing.T) {
	c, _ := newTestComponent(t, `{}`)
	assert.Equal(t, "semgraph.export.*", c.requestSubject)
	assert.Equal(t, "turtle", string(c.format))
	assert.Equal(t, "minimal", string(c.profile))
	require.Len(t, c.InputPorts(), 1)
	assert.Empty(t, c.OutputPorts())
}

func TestNewComponentInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"bad format", `{"format":"csv"}`},
		{"bad profile", `{"profile":"bfo"}`},
		{"bad history", `{"snapshot_history":100}`},
		{"bad json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewComponent(json.RawMessage(tt.raw), component.Dependencies{})
			assert.Error(t, err)
		})
	}
}

func TestStartRequiresNATS(t *testing.T) {
	c, _ := newTestComponent(t, `{}`)
	err := c.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NATS client required")
	assert.False(t, c.Health().Healthy)
}

func TestGetNTriples(t *testing.T) {
	c, _ := newTestComponent(t, `{}`)

	resp := requestJSON(t, c, ExportRequest{SnapshotID: snapshot, Format: "ntriples"})
	require.Empty(t, resp.Error)
	assert.Equal(t, ActionGet, resp.Action)
	assert.Equal(t, storage.SnapshotID(snapshot), resp.SnapshotID)
	assert.Equal(t, "ntriples", resp.Format)
	assert.Contains(t, resp.Content, `<http://example.org/alice> <http://xmlns.com/foaf/0.1/name> "Alice" .`)
	assert.Contains(t, resp.Content, `<http://example.org/alice> <http://example.org/knows> <http://example.org/bob> .`)
}

func TestGetBareUUID(t *testing.T) {
	c, _ := newTestComponent(t, `{}`)

	resp := requestJSON(t, c, ExportRequest{
		SnapshotID: strings.TrimPrefix(snapshot, "snapshot:"),
		Format:     "nodelink",
	})
	require.Empty(t, resp.Error)

	var doc struct {
		Nodes []map[string]any `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.Content), &doc))
	assert.Len(t, doc.Nodes, 2)
}

func TestGetDefaultFormat(t *testing.T) {
	c, _ := newTestComponent(t, `{"format":"ntriples","profile":"typed"}`)

	resp := requestJSON(t, c, ExportRequest{SnapshotID: snapshot})
	require.Empty(t, resp.Error)
	assert.Equal(t, "ntriples", resp.Format)
	assert.Equal(t, "typed", resp.Profile)
	assert.Contains(t, resp.Content, "<http://www.w3.org/1999/02/22-rdf-syntax-ns#type>")
}

func TestGetWrappedRequest(t *testing.T) {
	c, _ := newTestComponent(t, `{}`)

	msg := message.NewBaseMessage(ExportRequestType, &ExportRequest{SnapshotID: snapshot, Format: "ntriples"}, "test")
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	resp := request(t, c, data)
	require.Empty(t, resp.Error)
	assert.Contains(t, resp.Content, "<http://example.org/alice>")
}

func TestRequestErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     ExportRequest
		wantErr string
	}{
		{"missing id", ExportRequest{Action: ActionGet}, "snapshot_id is required"},
		{"unknown action", ExportRequest{Action: "purge", SnapshotID: snapshot}, "unknown action"},
		{"invalid id", ExportRequest{SnapshotID: "nope"}, "invalid snapshot ID"},
		{"not found", ExportRequest{SnapshotID: "snapshot:00000000-0000-0000-0000-000000000000"}, "snapshot not found"},
		{"bad format", ExportRequest{SnapshotID: snapshot, Format: "csv"}, "unsupported format"},
		{"bad profile", ExportRequest{SnapshotID: snapshot, Profile: "bfo"}, "unsupported profile"},
		{"delete disabled", ExportRequest{Action: ActionDelete, SnapshotID: snapshot}, "disabled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestComponent(t, `{}`)
			resp := requestJSON(t, c, tt.req)
			assert.Contains(t, resp.Error, tt.wantErr)
			assert.Equal(t, 1, c.Health().ErrorCount)
		})
	}
}

func TestList(t *testing.T) {
	c, _ := newTestComponent(t, `{}`)

	resp := requestJSON(t, c, ExportRequest{Action: ActionList})
	require.Empty(t, resp.Error)
	require.Len(t, resp.Snapshots, 1)
	assert.Equal(t, storage.SnapshotID(snapshot), resp.Snapshots[0].ID)
	assert.Equal(t, "people.ttl", resp.Snapshots[0].Source)
	assert.Equal(t, 2, resp.Snapshots[0].Stats.Nodes)
}

func TestDelete(t *testing.T) {
	c, store := newTestComponent(t, `{"allow_delete":true}`)

	resp := requestJSON(t, c, ExportRequest{Action: ActionDelete, SnapshotID: snapshot})
	require.Empty(t, resp.Error)
	assert.True(t, resp.Deleted)
	assert.Empty(t, store.snapshots)

	resp = requestJSON(t, c, ExportRequest{Action: ActionDelete, SnapshotID: snapshot})
	assert.Contains(t, resp.Error, "snapshot not found")
}

type fakeRegistry struct {
	registered []component.RegistrationConfig
}

func (f *fakeRegistry) RegisterWithConfig(cfg component.RegistrationConfig) error {
	f.registered = append(f.registered, cfg)
	return nil
}

func TestRegister(t *testing.T) {
	reg := &fakeRegistry{}
	require.NoError(t, Register(reg))
	require.Len(t, reg.registered, 1)
	assert.Equal(t, "rdf-export", reg.registered[0].Name)
	assert.Equal(t, "processor", reg.registered[0].Type)

	assert.Error(t, Register(nil))
}
