// Package rdfexport provides a request/reply processor that serves stored graph
// snapshots in node-link JSON or one of the RDF serializations.
package rdfexport

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

	"github.com/c360studio/semgraph/export"
	"github.com/c360studio/semgraph/storage"
)

// snapshotStore reads and removes snapshots.
type snapshotStore interface {
	Get(ctx context.Context, id storage.SnapshotID) (*storage.Snapshot, error)
	List(ctx context.Context) ([]*storage.Snapshot, error)
	Delete(ctx context.Context, id storage.SnapshotID) error
}

// Component implements the rdf-export processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger

	store snapshotStore

	format  export.Format
	profile export.Profile

	// Resolved subject from port config
	requestSubject string

	// Lifecycle
	running      bool
	startTime    time.Time
	mu           sync.RWMutex
	cancel       context.CancelFunc
	subscription *natsclient.Subscription

	// Metrics
	requestsProcessed atomic.Int64
	exportErrors      atomic.Int64
	lastActivityMu    sync.RWMutex
	lastActivity      time.Time
}

// NewComponent creates a new rdf-export processor.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	config := DefaultConfig()
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	requestSubject := "semgraph.export.*"
	if config.Ports != nil && len(config.Ports.Inputs) > 0 {
		requestSubject = config.Ports.Inputs[0].Subject
	}

	format, _ := export.ParseFormat(config.Format)
	profile := export.Profile(config.Profile)
	if profile == "" {
		profile = export.ProfileMinimal
	}

	return &Component{
		name:           "rdf-export",
		config:         config,
		natsClient:     deps.NATSClient,
		logger:         deps.GetLogger(),
		format:         format,
		profile:        profile,
		requestSubject: requestSubject,
	}, nil
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	return nil
}

// Start opens the snapshot bucket and begins answering export requests.
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

	if c.store == nil {
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

	c.logger.Info("rdf-export started",
		"subject", c.requestSubject,
		"format", c.format,
		"profile", c.profile)

	return nil
}

// handleRequest answers one export request. Accepts both raw ExportRequest JSON
// and BaseMessage-wrapped requests.
func (c *Component) handleRequest(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.requestsProcessed.Add(1)
	c.updateLastActivity()

	req, err := decodeRequest(data)
	if err != nil {
		return c.errorResponse("", err.Error())
	}
	if err := req.Validate(); err != nil {
		return c.errorResponse(req.action(), err.Error())
	}

	var resp *ExportResponse
	switch req.action() {
	case ActionList:
		resp, err = c.list(ctx)
	case ActionDelete:
		resp, err = c.delete(ctx, req)
	default:
		resp, err = c.get(ctx, req)
	}
	if err != nil {
		c.logger.Debug("Export failed",
			"action", req.action(),
			"snapshot_id", req.SnapshotID,
			"error", err)
		return c.errorResponse(req.action(), err.Error())
	}
	return json.Marshal(resp)
}

func decodeRequest(data []byte) (*ExportRequest, error) {
	var req ExportRequest
	if err := json.Unmarshal(data, &req); err == nil && (req.Action != "" || req.SnapshotID != "") {
		return &req, nil
	}

	var baseMsg message.BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if payload, ok := baseMsg.Payload().(*ExportRequest); ok {
		return payload, nil
	}
	payloadBytes, err := json.Marshal(baseMsg.Payload())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	req = ExportRequest{}
	if err := json.Unmarshal(payloadBytes, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal request: %w", err)
	}
	return &req, nil
}

func (c *Component) get(ctx context.Context, req *ExportRequest) (*ExportResponse, error) {
	id, err := storage.ParseSnapshotID(req.SnapshotID)
	if err != nil {
		return nil, err
	}

	format := c.format
	if req.Format != "" {
		if format, err = export.ParseFormat(req.Format); err != nil {
			return nil, err
		}
	}
	profile := c.profile
	if req.Profile != "" {
		profile = export.Profile(req.Profile)
		if _, ok := export.Profiles[profile]; !ok {
			return nil, fmt.Errorf("unsupported profile: %s", req.Profile)
		}
	}

	snap, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := snap.Decode()
	if err != nil {
		return nil, err
	}

	out, err := export.Marshal(g, format, export.Options{
		Namespaces: snap.Namespaces,
		BaseIRI:    c.config.BaseIRI,
		Profile:    profile,
		Indent:     req.Indent,
	})
	if err != nil {
		return nil, fmt.Errorf("serialize snapshot: %w", err)
	}

	c.logger.Debug("Exported snapshot",
		"snapshot_id", id,
		"format", format,
		"profile", profile,
		"output_bytes", len(out))

	return &ExportResponse{
		Action:     ActionGet,
		SnapshotID: id,
		Format:     string(format),
		Profile:    string(profile),
		Content:    string(out),
	}, nil
}

func (c *Component) list(ctx context.Context) (*ExportResponse, error) {
	snapshots, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := &ExportResponse{Action: ActionList, Snapshots: make([]SnapshotSummary, 0, len(snapshots))}
	for _, snap := range snapshots {
		resp.Snapshots = append(resp.Snapshots, SnapshotSummary{
			ID:        snap.ID,
			Source:    snap.Source,
			CreatedAt: snap.CreatedAt,
			Stats:     snap.Stats,
		})
	}
	return resp, nil
}

func (c *Component) delete(ctx context.Context, req *ExportRequest) (*ExportResponse, error) {
	if !c.config.AllowDelete {
		return nil, errors.New("delete requests are disabled")
	}
	id, err := storage.ParseSnapshotID(req.SnapshotID)
	if err != nil {
		return nil, err
	}
	if err := c.store.Delete(ctx, id); err != nil {
		return nil, err
	}
	c.logger.Info("Deleted snapshot", "snapshot_id", id)
	return &ExportResponse{Action: ActionDelete, SnapshotID: id, Deleted: true}, nil
}

// errorResponse builds an error response.
func (c *Component) errorResponse(action, errMsg string) ([]byte, error) {
	c.exportErrors.Add(1)
	return json.Marshal(&ExportResponse{Action: action, Error: errMsg})
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
	c.logger.Info("rdf-export stopped",
		"requests_processed", c.requestsProcessed.Load(),
		"export_errors", c.exportErrors.Load())

	return nil
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "rdf-export",
		Type:        "processor",
		Description: "Serves stored graph snapshots as node-link JSON, Turtle, N-Triples or JSON-LD",
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
		ports[i] = component.Port{
			Name:        portDef.Name,
			Direction:   component.DirectionInput,
			Required:    portDef.Required,
			Description: portDef.Description,
			Config:      component.NATSPort{Subject: portDef.Subject},
		}
	}
	return ports
}

// OutputPorts returns no ports; replies go to the requester.
func (c *Component) OutputPorts() []component.Port {
	return []component.Port{}
}

// ConfigSchema returns the configuration schema.
func (c *Component) ConfigSchema() component.ConfigSchema {
	return rdfExportSchema
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
		ErrorCount: int(c.exportErrors.Load()),
		Uptime:     time.Since(startTime),
		Status:     status,
	}
}

// DataFlow returns current data flow metrics.
func (c *Component) DataFlow() component.FlowMetrics {
	return component.FlowMetrics{
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
