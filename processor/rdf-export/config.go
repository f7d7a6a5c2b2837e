package rdfexport

import (
	"fmt"
	"reflect"

	"github.com/c360studio/semstreams/component"

	"github.com/c360studio/semgraph/export"
)

// rdfExportSchema defines the configuration schema.
var rdfExportSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the rdf-export processor.
type Config struct {
	Ports           *component.PortConfig `json:"ports" schema:"type:ports,description:Port configuration,category:basic"`
	Format          string                `json:"format" schema:"type:string,description:Default serialization (nodelink/turtle/ntriples/jsonld),category:basic,default:turtle"`
	Profile         string                `json:"profile" schema:"type:string,description:RDF export profile (minimal/typed),category:basic,default:minimal"`
	BaseIRI         string                `json:"base_iri" schema:"type:string,description:Base IRI for relative identifiers (default: snapshot base namespace),category:advanced"`
	SnapshotHistory int                   `json:"snapshot_history" schema:"type:int,description:KV history kept per snapshot,category:advanced,default:5"`
	AllowDelete     bool                  `json:"allow_delete" schema:"type:bool,description:Accept delete requests,category:advanced,default:false"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Format != "" {
		if _, err := export.ParseFormat(c.Format); err != nil {
			return fmt.Errorf("format: %w", err)
		}
	}
	if c.Profile != "" {
		if _, ok := export.Profiles[export.Profile(c.Profile)]; !ok {
			return fmt.Errorf("unsupported profile: %s (valid: minimal, typed)", c.Profile)
		}
	}
	if c.SnapshotHistory < 0 || c.SnapshotHistory > 64 {
		return fmt.Errorf("snapshot_history must be between 0 and 64")
	}
	return nil
}

// DefaultConfig returns the default configuration for rdf-export.
func DefaultConfig() Config {
	return Config{
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "export_requests",
					Type:        "nats",
					Subject:     "semgraph.export.*",
					Required:    true,
					Description: "Snapshot export request/reply subject",
				},
			},
		},
		Format:          string(export.FormatTurtle),
		Profile:         string(export.ProfileMinimal),
		SnapshotHistory: 5,
	}
}
