package rdf

import (
	"testing"

	"github.com/c360studio/semstreams/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMessageTriples(t *testing.T) {
	triples := []message.Triple{
		{Subject: "acme.ops.robot.arm.1", Predicate: "robot.status.speed", Object: 12.5},
		{Subject: "acme.ops.robot.arm.1", Predicate: "robot.link.peer", Object: "acme.ops.robot.arm.2"},
		{Subject: "acme.ops.robot.arm.2", Predicate: "robot.status.active", Object: true},
		{Subject: "acme.ops.robot.arm.2", Predicate: "http://example.org/homepage", Object: "https://example.org/arm2"},
		{Subject: "acme.ops.robot.arm.2", Predicate: "robot.status.count", Object: 3},
	}

	g := FromMessageTriples(triples, "http://example.org/")
	require.Equal(t, 5, g.Len())

	base, ok := g.Namespaces().Base()
	require.True(t, ok)
	assert.Equal(t, "http://example.org/", base)

	got := g.Triples()
	assert.Equal(t, IRI("http://example.org/acme.ops.robot.arm.1"), got[0].Subject)
	assert.Equal(t, IRI("http://example.org/robot.status.speed"), got[0].Predicate)
	assert.Equal(t, KindDouble, got[0].Object.Kind)
	assert.Equal(t, IRI("http://example.org/acme.ops.robot.arm.2"), got[1].Object)
	assert.Equal(t, Boolean(true), got[2].Object)
	assert.Equal(t, IRI("http://example.org/homepage"), got[3].Predicate)
	assert.Equal(t, IRI("https://example.org/arm2"), got[3].Object)
	assert.Equal(t, Integer(3), got[4].Object)
}
