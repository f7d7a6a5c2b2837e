// Package storage keeps converted graphs as snapshots in NATS KV.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/semgraph/convert"
	"github.com/c360studio/semgraph/pgraph"
	"github.com/c360studio/semgraph/rdf"
)

// BucketSnapshots is the KV bucket holding snapshots.
const BucketSnapshots = "SEMGRAPH_SNAPSHOTS"

const idPrefix = "snapshot:"

// SnapshotID identifies a stored snapshot.
type SnapshotID string

// NewSnapshotID generates a new unique snapshot ID.
func NewSnapshotID() SnapshotID {
	return SnapshotID(idPrefix + uuid.New().String())
}

// ParseSnapshotID accepts "snapshot:<uuid>" or a bare UUID.
func ParseSnapshotID(s string) (SnapshotID, error) {
	raw := strings.TrimPrefix(s, idPrefix)
	if _, err := uuid.Parse(raw); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return SnapshotID(idPrefix + raw), nil
}

// key is the KV key. KV keys may not contain ':'.
func (id SnapshotID) key() string {
	return strings.TrimPrefix(string(id), idPrefix)
}

// Snapshot is a stored conversion result.
type Snapshot struct {
	ID         SnapshotID      `json:"id"`
	Source     string          `json:"source,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	Stats      convert.Stats   `json:"stats"`
	Namespaces rdf.Namespaces  `json:"namespaces,omitempty"`
	Graph      json.RawMessage `json:"graph"`
}

// NewSnapshot serializes g as node-link JSON.
func NewSnapshot(source string, g *pgraph.Graph, stats convert.Stats, ns rdf.Namespaces) (*Snapshot, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal graph: %w", err)
	}
	return &Snapshot{
		Source:     source,
		Stats:      stats,
		Namespaces: ns,
		Graph:      data,
	}, nil
}

// Decode rebuilds the property graph.
func (s *Snapshot) Decode() (*pgraph.Graph, error) {
	g := pgraph.New()
	if err := json.Unmarshal(s.Graph, g); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot graph: %w", err)
	}
	return g, nil
}

// Store provides snapshot storage backed by NATS KV.
type Store struct {
	snapshots jetstream.KeyValue
}

// NewStore creates a Store, creating the bucket if it does not exist.
func NewStore(ctx context.Context, js jetstream.JetStream, history int) (*Store, error) {
	kv, err := getOrCreateBucket(ctx, js, BucketSnapshots, history)
	if err != nil {
		return nil, fmt.Errorf("create snapshots bucket: %w", err)
	}
	return &Store{snapshots: kv}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string, history int) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	if history <= 0 {
		history = 5
	}
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "Semgraph conversion snapshots",
		History:     uint8(history),
	})
}

// Save stores a snapshot. A snapshot without ID gets a new one, and the ID is returned.
func (s *Store) Save(ctx context.Context, snap *Snapshot) (SnapshotID, error) {
	if snap.ID == "" {
		snap.ID = NewSnapshotID()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if _, err := s.snapshots.Put(ctx, snap.ID.key(), data); err != nil {
		return "", fmt.Errorf("store snapshot: %w", err)
	}
	return snap.ID, nil
}

// Get retrieves a snapshot by ID.
func (s *Store) Get(ctx context.Context, id SnapshotID) (*Snapshot, error) {
	entry, err := s.snapshots.Get(ctx, id.key())
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(entry.Value(), &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// List returns all snapshots, newest first.
func (s *Store) List(ctx context.Context) ([]*Snapshot, error) {
	keys, err := s.snapshots.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list snapshot keys: %w", err)
	}

	snapshots := make([]*Snapshot, 0, len(keys))
	for _, key := range keys {
		entry, err := s.snapshots.Get(ctx, key)
		if err != nil {
			continue // Deleted between Keys and Get
		}
		var snap Snapshot
		if err := json.Unmarshal(entry.Value(), &snap); err != nil {
			continue
		}
		snapshots = append(snapshots, &snap)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})
	return snapshots, nil
}

// Delete removes a snapshot.
func (s *Store) Delete(ctx context.Context, id SnapshotID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.snapshots.Delete(ctx, id.key()); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) ||
		(err != nil && strings.Contains(err.Error(), "key not found"))
}
