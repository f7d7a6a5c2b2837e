package rdfexport

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the rdf-export processor with the given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "rdf-export",
		Factory:     NewComponent,
		Schema:      rdfExportSchema,
		Type:        "processor",
		Protocol:    "rdf",
		Domain:      "graph",
		Description: "Serves stored graph snapshots as node-link JSON, Turtle, N-Triples or JSON-LD",
		Version:     "1.0.0",
	})
}
