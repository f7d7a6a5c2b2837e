package graph

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/c360studio/semstreams/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semgraph/export"
	"github.com/c360studio/semgraph/pgraph"
	"github.com/c360studio/semgraph/rdf"
)

const ex = "http://example.org/"

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	messages [][]byte
	attempts int
	err      error
}

func (r *recordingPublisher) PublishToStream(_ context.Context, subject string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	if r.err != nil {
		return r.err
	}
	r.subjects = append(r.subjects, subject)
	r.messages = append(r.messages, data)
	return nil
}

func testGraph(t *testing.T) *pgraph.Graph {
	t.Helper()
	g := pgraph.New()
	g.AddNode(ex+"alice", pgraph.Attributes{"name": "Alice", pgraph.KeyIRI: ex + "alice"})
	g.AddNode(ex+"bob", pgraph.Attributes{"name": "Bob", pgraph.KeyIRI: ex + "bob"})
	knows := rdf.Triple{Subject: rdf.IRI(ex + "alice"), Predicate: rdf.IRI(ex + "knows"), Object: rdf.IRI(ex + "bob")}
	_, err := g.AddEdge(ex+"alice", ex+"bob", "urn:rel:1",
		pgraph.Attributes{pgraph.KeyLabel: "knows", pgraph.KeyIRI: "urn:rel:1"}, knows)
	require.NoError(t, err)
	return g
}

func TestEntitiesGroupBySubject(t *testing.T) {
	entities := Entities(testGraph(t), rdf.Namespaces{"base": ex}, export.ProfileMinimal)
	require.Len(t, entities, 2)

	assert.Equal(t, ex+"alice", entities[0].EntityID())
	assert.Len(t, entities[0].Triples(), 2) // name + knows
	assert.Equal(t, ex+"bob", entities[1].EntityID())
	for _, e := range entities {
		assert.NoError(t, e.Validate())
	}
}

func TestPublish(t *testing.T) {
	rec := &recordingPublisher{}
	p := NewPublisher(rec, "", nil)

	n, err := p.Publish(context.Background(), testGraph(t), rdf.Namespaces{"base": ex})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, rec.messages, 2)
	assert.Equal(t, GraphIngestSubject, rec.subjects[0])

	var msg EntityIngestMessage
	require.NoError(t, json.Unmarshal(rec.messages[0], &msg))
	assert.Equal(t, ex+"alice", msg.ID)
	assert.NotEmpty(t, msg.Triples)
}

func TestPublishWithoutClient(t *testing.T) {
	p := NewPublisher(nil, "", nil)
	n, err := p.Publish(context.Background(), testGraph(t), rdf.Namespaces{"base": ex})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPublishFailure(t *testing.T) {
	rec := &recordingPublisher{err: errors.New("stream unavailable")}
	p := NewPublisher(rec, "custom.subject", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Publish(ctx, testGraph(t), rdf.Namespaces{"base": ex})
	assert.Error(t, err)
}

func TestPublishRetriesTransientFailure(t *testing.T) {
	rec := &recordingPublisher{err: errors.New("stream unavailable")}
	p := NewPublisher(rec, "", nil)

	n, err := p.Publish(context.Background(), testGraph(t), rdf.Namespaces{"base": ex})
	require.Error(t, err)
	assert.Zero(t, n)
	assert.True(t, errs.IsTransient(err))
	assert.Equal(t, 3, rec.attempts)
}

func TestPublishStopsOnInvalidFailure(t *testing.T) {
	rejected := errs.WrapInvalid(errors.New("payload rejected"), "stream", "PublishToStream", "validate")
	rec := &recordingPublisher{err: rejected}
	p := NewPublisher(rec, "", nil)

	n, err := p.Publish(context.Background(), testGraph(t), rdf.Namespaces{"base": ex})
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, rec.attempts)
	assert.True(t, errs.IsInvalid(err))
	assert.False(t, errs.IsTransient(err))
	assert.ErrorIs(t, err, rejected)
}

func TestEntityPayloadValidate(t *testing.T) {
	assert.Error(t, (&EntityPayload{}).Validate())
	assert.Error(t, (&EntityPayload{EntityID_: "x"}).Validate())
	assert.Equal(t, EntityType, (&EntityPayload{}).Schema())
}
