// Package rdfconvert provides a request/reply service that converts RDF documents
// into property graphs, optionally collapsing literal predicates, storing a
// snapshot and publishing the nodes to the graph ingest stream.
package rdfconvert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"

	"github.com/c360studio/semgraph/collapse"
	"github.com/c360studio/semgraph/convert"
	"github.com/c360studio/semgraph/export"
	"github.com/c360studio/semgraph/graph"
	"github.com/c360studio/semgraph/pgraph"
	"github.com/c360studio/semgraph/rdf"
	"github.com/c360studio/semgraph/storage"
)

// snapshotSaver stores conversion results.
type snapshotSaver interface {
	Save(ctx context.Context, snap *storage.Snapshot) (storage.SnapshotID, error)
}

// entityPublisher sends converted graphs downstream.
type entityPublisher interface {
	Publish(ctx context.Context, g *pgraph.Graph, ns rdf.Namespaces) (int, error)
}

// Component implements the rdf-convert processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger
	metrics    *convertMetrics

	store     snapshotSaver
	publisher entityPublisher

	// Resolved subjects from port config
	requestSubject string
	entitySubject  string

	// Lifecycle
	running      bool
	startTime    time.Time
	mu           sync.RWMutex
	cancel       context.CancelFunc
	subscription *natsclient.Subscription

	// Metrics
	requestsProcessed atomic.Int64
	requestsFailed    atomic.Int64
	lastActivityMu    sync.RWMutex
	lastActivity      time.Time
}

// NewComponent creates a new rdf-convert processor.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	config := DefaultConfig()
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	requestSubject := "semgraph.convert.*"
	entitySubject := graph.GraphIngestSubject
	if config.Ports != nil {
		if len(config.Ports.Inputs) > 0 {
			requestSubject = config.Ports.Inputs[0].Subject
		}
		if len(config.Ports.Outputs) > 0 {
			entitySubject = config.Ports.Outputs[0].Subject
		}
	}

	logger := deps.GetLogger()
	metrics, err := newConvertMetrics(deps.MetricsRegistry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	return &Component{
		name:           "rdf-convert",
		config:         config,
		natsClient:     deps.NATSClient,
		logger:         logger,
		metrics:        metrics,
		requestSubject: requestSubject,
		entitySubject:  entitySubject,
	}, nil
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	c.logger.Debug("Initialized rdf-convert",
		"request_subject", c.requestSubject,
		"save_snapshots", c.config.SaveSnapshots,
		"publish_entities", c.config.PublishEntities)
	return nil
}

// Start begins handling conversion requests.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("component already running")
	}
	if c.natsClient == nil {
		c.mu.Unlock()
		return fmt.Errorf("NATS client required")
	}

	if c.config.SaveSnapshots && c.store == nil {
		js, err := c.natsClient.JetStream()
		if err != nil {
			c.mu.Unlock()
			return fmt.Errorf("get JetStream: %w", err)
		}
		store, err := storage.NewStore(ctx, js, c.config.SnapshotHistory)
		if err != nil {
			c.mu.Unlock()
			return fmt.Errorf("open snapshot store: %w", err)
		}
		c.store = store
	}
	if c.config.PublishEntities && c.publisher == nil {
		c.publisher = graph.NewPublisher(c.natsClient, c.entitySubject, c.logger)
	}

	// Set running state while holding lock to prevent race condition
	c.running = true
	c.startTime = time.Now()

	subCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	sub, err := c.natsClient.SubscribeForRequests(subCtx, c.requestSubject, c.handleRequest)
	if err != nil {
		// Rollback running state on failure
		c.mu.Lock()
		c.running = false
		c.cancel = nil
		c.mu.Unlock()
		cancel()
		return fmt.Errorf("subscribe to %s: %w", c.requestSubject, err)
	}

	c.mu.Lock()
	c.subscription = sub
	c.mu.Unlock()

	c.logger.Info("rdf-convert started",
		"subject", c.requestSubject,
		"snapshots", c.store != nil,
		"publishing", c.publisher != nil)

	return nil
}

// handleRequest processes a conversion request and returns response data.
// Accepts both raw ConvertRequest JSON and BaseMessage-wrapped requests.
func (c *Component) handleRequest(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.requestsProcessed.Add(1)
	c.updateLastActivity()

	if c.config.MaxContentBytes > 0 && len(data) > c.config.MaxContentBytes {
		return c.errorResponse("", "request", fmt.Sprintf("request exceeds %d bytes", c.config.MaxContentBytes))
	}

	var req ConvertRequest
	if err := json.Unmarshal(data, &req); err != nil || isEnvelope(data) {
		var baseMsg message.BaseMessage
		if err := json.Unmarshal(data, &baseMsg); err != nil {
			return c.errorResponse("", "request", "failed to parse request: "+err.Error())
		}
		payloadBytes, err := json.Marshal(baseMsg.Payload())
		if err != nil {
			return c.errorResponse("", "request", "failed to marshal payload: "+err.Error())
		}
		if err := json.Unmarshal(payloadBytes, &req); err != nil {
			return c.errorResponse("", "request", "failed to unmarshal request: "+err.Error())
		}
	}

	if c.config.TimeoutSecs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.config.TimeoutSecs)*time.Second)
		defer cancel()
	}

	resp, errorType, err := c.process(ctx, &req)
	if err != nil {
		c.logger.Debug("Conversion failed",
			"mode", req.Mode,
			"error_type", errorType,
			"error", err)
		return c.errorResponse(req.Mode, errorType, err.Error())
	}
	return json.Marshal(resp)
}

// isEnvelope reports whether data is a BaseMessage carrying a typed payload.
func isEnvelope(data []byte) bool {
	var envelope struct {
		Type    json.RawMessage `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return false
	}
	return len(envelope.Type) > 0 && len(envelope.Payload) > 0
}

// process runs one conversion. On failure it reports which step failed.
func (c *Component) process(ctx context.Context, req *ConvertRequest) (*ConvertResponse, string, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		return nil, "request", err
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeProperty
	}

	inputFormat := req.Format
	if inputFormat == "" {
		inputFormat = c.config.InputFormat
	}
	format, err := rdf.ParseFormat(inputFormat)
	if err != nil {
		return nil, "request", err
	}
	outputName := req.OutputFormat
	if outputName == "" {
		outputName = c.config.OutputFormat
	}
	outFormat, err := export.ParseFormat(outputName)
	if err != nil {
		return nil, "request", err
	}

	src, err := rdf.DecodeString(req.Content, format)
	if err != nil {
		return nil, "parse", err
	}
	ns := c.namespaces(src, req.Namespaces)

	resp := &ConvertResponse{Mode: mode, Format: string(outFormat)}
	var g *pgraph.Graph
	switch mode {
	case ModeTerm:
		g = pgraph.TermGraph(src.Triples())
		resp.Stats = convert.Stats{Triples: src.Len(), Nodes: g.NumNodes(), Edges: g.NumEdges()}
	default:
		res, err := convert.New(convert.WithNamespaces(ns), convert.WithLogger(c.logger)).Run(src)
		if err != nil {
			return nil, "convert", err
		}
		g = res.Graph
		resp.RunID = res.RunID
		resp.Stats = res.Stats
	}

	if opts := req.Collapse; opts != nil {
		predicates := opts.Predicates
		if len(predicates) == 0 && opts.Suggest {
			predicates = collapse.Suggest(src, ns).IRIs()
		}
		subjects := opts.Subjects
		if opts.ProtectSubjects {
			subjects = append(subjects, collapse.Subjects(src)...)
		}
		if _, err := collapse.Collapse(g, predicates, subjects, collapse.WithLogger(c.logger)); err != nil {
			return nil, "collapse", err
		}
		resp.Collapsed = predicates
		resp.Stats.Nodes = g.NumNodes()
		resp.Stats.Edges = g.NumEdges()
	}

	if outFormat == export.FormatNodeLink {
		resp.Graph, err = json.Marshal(g)
	} else {
		var out []byte
		out, err = export.Marshal(g, outFormat, export.Options{Namespaces: ns})
		resp.Output = string(out)
	}
	if err != nil {
		return nil, "output", err
	}

	if req.Save {
		if c.store == nil {
			return nil, "snapshot", errors.New("snapshot storage is not enabled")
		}
		snap, err := storage.NewSnapshot(req.Source, g, resp.Stats, ns)
		if err != nil {
			return nil, "snapshot", err
		}
		id, err := c.store.Save(ctx, snap)
		if err != nil {
			return nil, "snapshot", err
		}
		resp.SnapshotID = string(id)
	}

	if req.Publish {
		if c.publisher == nil {
			return nil, "publish", errors.New("entity publishing is not enabled")
		}
		n, err := c.publisher.Publish(ctx, g, ns)
		if err != nil {
			return nil, "publish", err
		}
		resp.Published = n
	}

	c.metrics.recordSuccess(mode, resp.Stats.Nodes, time.Since(start))
	c.logger.Debug("Converted document",
		"mode", mode,
		"nodes", resp.Stats.Nodes,
		"edges", resp.Stats.Edges,
		"snapshot_id", resp.SnapshotID)

	return resp, "", nil
}

// namespaces layers the configured table, the document's declarations and the
// request table, later layers winning.
func (c *Component) namespaces(src *rdf.Graph, requested map[string]string) rdf.Namespaces {
	ns := make(rdf.Namespaces)
	for prefix, iri := range c.config.Namespaces {
		ns[prefix] = iri
	}
	for prefix, iri := range src.Namespaces() {
		ns[prefix] = iri
	}
	for prefix, iri := range requested {
		ns[prefix] = iri
	}
	return ns
}

// errorResponse builds an error response.
func (c *Component) errorResponse(mode, errorType, errMsg string) ([]byte, error) {
	c.requestsFailed.Add(1)
	if mode == "" {
		mode = ModeProperty
	}
	c.metrics.recordError(mode, errorType)
	return json.Marshal(&ConvertResponse{Mode: mode, Error: errMsg})
}

// Stop gracefully stops the component.
func (c *Component) Stop(_ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	c.running = false
	c.logger.Info("rdf-convert stopped",
		"requests_processed", c.requestsProcessed.Load(),
		"requests_failed", c.requestsFailed.Load())

	return nil
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "rdf-convert",
		Type:        "processor",
		Description: "Request/reply service converting RDF documents to property graphs",
		Version:     "1.0.0",
	}
}

// InputPorts returns configured input port definitions.
func (c *Component) InputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}

	ports := make([]component.Port, len(c.config.Ports.Inputs))
	for i, portDef := range c.config.Ports.Inputs {
		ports[i] = buildPort(portDef, component.DirectionInput)
	}
	return ports
}

// OutputPorts returns configured output port definitions.
func (c *Component) OutputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}

	ports := make([]component.Port, len(c.config.Ports.Outputs))
	for i, portDef := range c.config.Ports.Outputs {
		ports[i] = buildPort(portDef, component.DirectionOutput)
	}
	return ports
}

// buildPort creates a component.Port from a PortDefinition, using JetStreamPort
// for jetstream-type ports and NATSPort for core NATS ports.
func buildPort(portDef component.PortDefinition, direction component.Direction) component.Port {
	port := component.Port{
		Name:        portDef.Name,
		Direction:   direction,
		Required:    portDef.Required,
		Description: portDef.Description,
	}
	if portDef.Type == "jetstream" {
		port.Config = component.JetStreamPort{
			StreamName: portDef.StreamName,
			Subjects:   []string{portDef.Subject},
		}
	} else {
		port.Config = component.NATSPort{
			Subject: portDef.Subject,
		}
	}
	return port
}

// ConfigSchema returns the configuration schema.
func (c *Component) ConfigSchema() component.ConfigSchema {
	return rdfConvertSchema
}

// Health returns the current health status.
func (c *Component) Health() component.HealthStatus {
	c.mu.RLock()
	running := c.running
	startTime := c.startTime
	c.mu.RUnlock()

	status := "stopped"
	if running {
		status = "running"
	}

	return component.HealthStatus{
		Healthy:    running,
		LastCheck:  time.Now(),
		ErrorCount: int(c.requestsFailed.Load()),
		Uptime:     time.Since(startTime),
		Status:     status,
	}
}

// DataFlow returns current data flow metrics.
func (c *Component) DataFlow() component.FlowMetrics {
	var errorRate float64
	if total := c.requestsProcessed.Load(); total > 0 {
		errorRate = float64(c.requestsFailed.Load()) / float64(total)
	}
	return component.FlowMetrics{
		ErrorRate:    errorRate,
		LastActivity: c.getLastActivity(),
	}
}

func (c *Component) updateLastActivity() {
	c.lastActivityMu.Lock()
	c.lastActivity = time.Now()
	c.lastActivityMu.Unlock()
}

func (c *Component) getLastActivity() time.Time {
	c.lastActivityMu.RLock()
	defer c.lastActivityMu.RUnlock()
	return c.lastActivity
}
