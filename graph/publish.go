// Package graph publishes converted property graphs to the knowledge graph ingest stream.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/pkg/errs"
	"github.com/c360studio/semstreams/pkg/retry"

	"github.com/c360studio/semgraph/export"
	"github.com/c360studio/semgraph/pgraph"
	"github.com/c360studio/semgraph/rdf"
)

// GraphIngestSubject is the subject entities are published on.
const GraphIngestSubject = "graph.ingest.entity"

// StreamPublisher is the part of the NATS client the publisher needs.
type StreamPublisher interface {
	PublishToStream(ctx context.Context, subject string, data []byte) error
}

// Publisher sends one entity message per subject of a converted graph.
type Publisher struct {
	nc      StreamPublisher
	subject string
	profile export.Profile
	logger  *slog.Logger
}

// NewPublisher creates a publisher. A nil client makes Publish a no-op.
func NewPublisher(nc StreamPublisher, subject string, logger *slog.Logger) *Publisher {
	if subject == "" {
		subject = GraphIngestSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{nc: nc, subject: subject, profile: export.ProfileTyped, logger: logger}
}

// Entities groups the graph's statements by subject, in first-seen order.
func Entities(g *pgraph.Graph, ns rdf.Namespaces, profile export.Profile) []EntityPayload {
	now := time.Now()
	var out []EntityPayload
	index := make(map[string]int)
	for _, tr := range export.GraphTriples(g, ns, profile) {
		at, ok := index[tr.Subject]
		if !ok {
			at = len(out)
			index[tr.Subject] = at
			out = append(out, EntityPayload{EntityID_: tr.Subject, UpdatedAt: now})
		}
		out[at].TripleData = append(out[at].TripleData, tr)
	}
	return out
}

// Publish sends every entity of g and returns the number published. Transient
// publish failures are retried; invalid or fatal ones stop at the first attempt.
// The first entity that still fails aborts, and the returned error carries its
// errs classification.
func (p *Publisher) Publish(ctx context.Context, g *pgraph.Graph, ns rdf.Namespaces) (int, error) {
	if p.nc == nil {
		return 0, nil
	}

	entities := Entities(g, ns, p.profile)
	for i := range entities {
		entity := &entities[i]
		data, err := json.Marshal(EntityIngestMessage{
			ID:        entity.EntityID_,
			Triples:   entity.TripleData,
			UpdatedAt: entity.UpdatedAt,
		})
		if err != nil {
			return i, errs.WrapInvalid(err, "graph", "Publish", "marshal entity "+entity.EntityID_)
		}

		err = retry.Do(ctx, retry.DefaultConfig(), func() error {
			err := p.nc.PublishToStream(ctx, p.subject, data)
			if err == nil {
				return nil
			}
			if errs.Classify(err) != errs.ErrorTransient {
				return retry.NonRetryable(err)
			}
			return errs.WrapTransient(err, "graph", "Publish", "publish to "+p.subject)
		})
		if err != nil {
			p.logger.Warn("Entity publish failed",
				"entity", entity.EntityID_,
				"class", errs.Classify(err).String(),
				"error", err)
			return i, fmt.Errorf("publish entity %s: %w", entity.EntityID_, err)
		}
	}

	p.logger.Debug("Published graph entities",
		"subject", p.subject,
		"entities", len(entities))
	return len(entities), nil
}

// EntityIngestMessage is the message format for graph ingestion.
type EntityIngestMessage struct {
	ID        string           `json:"id"`
	Triples   []message.Triple `json:"triples"`
	UpdatedAt time.Time        `json:"updated_at"`
}
