package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semgraph/config"
	rdfconvert "github.com/c360studio/semgraph/processor/rdf-convert"
	rdfexport "github.com/c360studio/semgraph/processor/rdf-export"
)

func TestAppComponentConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Namespaces = map[string]string{"base": ex}
	cfg.Service.Subject = "custom.convert"
	cfg.Service.PublishEntities = true
	cfg.Output.Format = "turtle"

	cc := NewApp(cfg, slog.Default()).componentConfig()
	require.NoError(t, cc.Validate())
	assert.Equal(t, "custom.convert", cc.Ports.Inputs[0].Subject)
	assert.Equal(t, ex, cc.Namespaces["base"])
	assert.True(t, cc.PublishEntities)
	assert.False(t, cc.SaveSnapshots)
	assert.Equal(t, "turtle", cc.OutputFormat)
}

func TestAppServesConversions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping embedded NATS test in short mode")
	}
	t.Setenv("NATS_URL", "")

	cfg := config.DefaultConfig()
	cfg.Namespaces = map[string]string{"base": ex}
	cfg.Service.Subject = "semgraph.convert.test"
	cfg.Metrics.Addr = ""

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	app := NewApp(cfg, slog.Default())
	defer app.Shutdown(5 * time.Second)
	require.NoError(t, app.Start(ctx))
	require.NotNil(t, app.embeddedServer)

	nc, err := nats.Connect(app.embeddedServer.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	req, err := json.Marshal(rdfconvert.ConvertRequest{
		Content: `@prefix foaf: <http://xmlns.com/foaf/0.1/> .
<http://example.org/alice> a foaf:Person ;
    foaf:name "Alice" .`,
		Format: "turtle",
	})
	require.NoError(t, err)

	msg, err := nc.Request(cfg.Service.Subject, req, 10*time.Second)
	require.NoError(t, err)

	var resp rdfconvert.ConvertResponse
	require.NoError(t, json.Unmarshal(msg.Data, &resp))
	assert.Empty(t, resp.Error)
	assert.Equal(t, 1, resp.Stats.Nodes)
	assert.Contains(t, string(resp.Graph), ex+"alice")
}

func TestAppServesSnapshots(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping embedded NATS test in short mode")
	}
	t.Setenv("NATS_URL", "")

	cfg := config.DefaultConfig()
	cfg.Namespaces = map[string]string{"base": ex}
	cfg.Service.Subject = "semgraph.convert.snap"
	cfg.Service.ExportSubject = "semgraph.export.snap"
	cfg.Service.SaveSnapshots = true
	cfg.Metrics.Addr = ""

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	app := NewApp(cfg, slog.Default())
	defer app.Shutdown(5 * time.Second)
	require.NoError(t, app.Start(ctx))
	require.NotNil(t, app.exporter)

	nc, err := nats.Connect(app.embeddedServer.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	req, err := json.Marshal(rdfconvert.ConvertRequest{
		Content: `@prefix foaf: <http://xmlns.com/foaf/0.1/> .
<http://example.org/alice> a foaf:Person ;
    foaf:name "Alice" .`,
		Format: "turtle",
		Save:   true,
	})
	require.NoError(t, err)

	msg, err := nc.Request(cfg.Service.Subject, req, 10*time.Second)
	require.NoError(t, err)
	var converted rdfconvert.ConvertResponse
	require.NoError(t, json.Unmarshal(msg.Data, &converted))
	require.Empty(t, converted.Error)
	require.NotEmpty(t, converted.SnapshotID)

	exportReq, err := json.Marshal(rdfexport.ExportRequest{SnapshotID: converted.SnapshotID, Format: "ntriples"})
	require.NoError(t, err)
	msg, err = nc.Request(cfg.Service.ExportSubject, exportReq, 10*time.Second)
	require.NoError(t, err)

	var exported rdfexport.ExportResponse
	require.NoError(t, json.Unmarshal(msg.Data, &exported))
	require.Empty(t, exported.Error)
	assert.Contains(t, exported.Content, `<http://example.org/alice> <http://xmlns.com/foaf/0.1/name> "Alice" .`)
}
