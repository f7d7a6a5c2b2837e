package export

import (
	"github.com/c360studio/semgraph/rdf"
	"github.com/c360studio/semgraph/vocabulary/semgraph"
)

// Profile determines which type assertions accompany exported RDF.
type Profile string

const (
	// ProfileMinimal writes the graph content only.
	ProfileMinimal Profile = "minimal"

	// ProfileTyped adds semgraph:Node and semgraph:Edge class assertions.
	ProfileTyped Profile = "typed"
)

// ProfileConfig contains configuration for an export profile.
type ProfileConfig struct {
	// Name is the profile identifier.
	Name Profile

	// Description describes the profile.
	Description string

	// TypeNodes adds rdf:type semgraph:Node for every resource node.
	TypeNodes bool

	// TypeEdges adds rdf:type semgraph:Edge for every reified edge.
	TypeEdges bool
}

// Profiles contains the configuration for all available export profiles.
var Profiles = map[Profile]ProfileConfig{
	ProfileMinimal: {
		Name:        ProfileMinimal,
		Description: "Graph content only",
	},
	ProfileTyped: {
		Name:        ProfileTyped,
		Description: "Graph content plus semgraph class assertions",
		TypeNodes:   true,
		TypeEdges:   true,
	},
}

// GetProfileConfig returns the configuration for a profile.
func GetProfileConfig(profile Profile) ProfileConfig {
	if config, ok := Profiles[profile]; ok {
		return config
	}
	return Profiles[ProfileMinimal]
}

func typeTriple(subject rdf.Term, class string) rdf.Triple {
	return rdf.Triple{
		Subject:   subject,
		Predicate: rdf.IRI(semgraph.PredicateIRI(semgraph.NodeType)),
		Object:    rdf.IRI(class),
	}
}
