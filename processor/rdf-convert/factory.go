package rdfconvert

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the rdf-convert processor with the given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "rdf-convert",
		Factory:     NewComponent,
		Schema:      rdfConvertSchema,
		Type:        "processor",
		Protocol:    "rdf",
		Domain:      "graph",
		Description: "Request/reply service converting RDF documents to property graphs",
		Version:     "1.0.0",
	})
}
