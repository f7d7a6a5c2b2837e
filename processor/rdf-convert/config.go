package rdfconvert

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/c360studio/semstreams/component"

	"github.com/c360studio/semgraph/export"
	"github.com/c360studio/semgraph/rdf"
)

// rdfConvertSchema defines the configuration schema.
var rdfConvertSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the rdf-convert processor.
type Config struct {
	Ports           *component.PortConfig `json:"ports" schema:"type:ports,description:Port configuration,category:basic"`
	Namespaces      map[string]string     `json:"namespaces" schema:"type:object,description:Default namespace table (prefix to IRI; must include base),category:basic"`
	InputFormat     string                `json:"input_format" schema:"type:string,description:Default RDF input format (turtle/ntriples/rdfxml),category:basic,default:turtle"`
	OutputFormat    string                `json:"output_format" schema:"type:string,description:Default output format (nodelink/turtle/ntriples/jsonld),category:basic,default:nodelink"`
	SaveSnapshots   bool                  `json:"save_snapshots" schema:"type:bool,description:Store every converted graph in the snapshot bucket,category:advanced,default:false"`
	SnapshotHistory int                   `json:"snapshot_history" schema:"type:int,description:KV history kept per snapshot,category:advanced,default:5"`
	PublishEntities bool                  `json:"publish_entities" schema:"type:bool,description:Publish converted nodes to the graph ingest stream,category:advanced,default:false"`
	MaxContentBytes int                   `json:"max_content_bytes" schema:"type:int,description:Largest accepted RDF document in bytes,category:advanced,default:10485760"`
	TimeoutSecs     int                   `json:"timeout_secs" schema:"type:int,description:Request timeout in seconds,category:basic,default:30"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.InputFormat != "" {
		if _, err := rdf.ParseFormat(c.InputFormat); err != nil {
			return fmt.Errorf("input_format: %w", err)
		}
	}
	if c.OutputFormat != "" {
		if _, err := export.ParseFormat(c.OutputFormat); err != nil {
			return fmt.Errorf("output_format: %w", err)
		}
	}
	if c.TimeoutSecs < 0 {
		return fmt.Errorf("timeout_secs must be non-negative")
	}
	if c.MaxContentBytes < 0 {
		return fmt.Errorf("max_content_bytes must be non-negative")
	}
	if c.SnapshotHistory < 0 || c.SnapshotHistory > 64 {
		return fmt.Errorf("snapshot_history must be between 0 and 64")
	}
	for prefix, iri := range c.Namespaces {
		if strings.TrimSpace(iri) == "" {
			return fmt.Errorf("namespace %q has an empty IRI", prefix)
		}
	}
	return nil
}

// DefaultConfig returns the default configuration for rdf-convert.
func DefaultConfig() Config {
	return Config{
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "convert_requests",
					Type:        "nats",
					Subject:     "semgraph.convert.*",
					Required:    true,
					Description: "Conversion request/reply subject",
				},
			},
			Outputs: []component.PortDefinition{
				{
					Name:        "entities_out",
					Type:        "jetstream",
					Subject:     "graph.ingest.entity",
					StreamName:  "GRAPH",
					Required:    false,
					Description: "Converted graph entities for the knowledge graph",
				},
			},
		},
		InputFormat:     string(rdf.FormatTurtle),
		OutputFormat:    string(export.FormatNodeLink),
		SnapshotHistory: 5,
		MaxContentBytes: 10 << 20,
		TimeoutSecs:     30,
	}
}
