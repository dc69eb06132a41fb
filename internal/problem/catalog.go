package problem

import (
	"fmt"
	"strings"
)

// Primitive is a top-level conceptual category of the course.
type Primitive string

const (
	PrimitiveCollection   Primitive = "COLLECTION"
	PrimitiveArrangement  Primitive = "ARRANGEMENT"
	PrimitiveDirection    Primitive = "DIRECTION"
	PrimitiveProximity    Primitive = "PROXIMITY"
	PrimitiveSameness     Primitive = "SAMENESS"
	PrimitiveChange       Primitive = "CHANGE"
	PrimitiveRate         Primitive = "RATE"
	PrimitiveAccumulation Primitive = "ACCUMULATION"
	PrimitiveSpread       Primitive = "SPREAD"
)

// DefaultPrimitive and DefaultTopic select the session started when the
// learner does not pick one.
const (
	DefaultPrimitive = PrimitiveDirection
	DefaultTopic     = "bond_angles"
)

// catalog lists every primitive in course order with its topics.
var catalog = []struct {
	primitive Primitive
	topics    []string
}{
	{PrimitiveCollection, []string{"moles", "electron_shells", "isomer_counting"}},
	{PrimitiveArrangement, []string{"stereoisomers", "crystal_packing", "mo_diagrams"}},
	{PrimitiveDirection, []string{"bond_angles", "dipoles", "orbital_orientation"}},
	{PrimitiveProximity, []string{"potential_energy", "reaction_coordinates", "intermolecular_forces"}},
	{PrimitiveSameness, []string{"molecular_symmetry", "resonance", "conservation_laws"}},
	{PrimitiveChange, []string{"reaction_progress", "phase_transitions", "electron_transfer"}},
	{PrimitiveRate, []string{"kinetics", "half_life", "diffusion"}},
	{PrimitiveAccumulation, []string{"work", "heat", "total_yield"}},
	{PrimitiveSpread, []string{"boltzmann_distribution", "entropy", "orbital_probability"}},
}

// Primitives returns all primitives in course order.
func Primitives() []Primitive {
	out := make([]Primitive, len(catalog))
	for i, c := range catalog {
		out[i] = c.primitive
	}
	return out
}

// Topics returns the topics of a primitive, or nil if it is unknown.
func Topics(p Primitive) []string {
	for _, c := range catalog {
		if c.primitive == p {
			out := make([]string, len(c.topics))
			copy(out, c.topics)
			return out
		}
	}
	return nil
}

// Catalog returns the primitive -> topics map served by the practice API.
func Catalog() map[string][]string {
	out := make(map[string][]string, len(catalog))
	for _, c := range catalog {
		out[string(c.primitive)] = Topics(c.primitive)
	}
	return out
}

// ParsePrimitive normalizes s (case-insensitive) to a known Primitive.
func ParsePrimitive(s string) (Primitive, error) {
	p := Primitive(strings.ToUpper(strings.TrimSpace(s)))
	if Topics(p) == nil {
		return "", fmt.Errorf("unknown primitive %q", s)
	}
	return p, nil
}

// ValidateTopic returns an error if topic does not belong to p.
func ValidateTopic(p Primitive, topic string) error {
	for _, t := range Topics(p) {
		if t == topic {
			return nil
		}
	}
	return fmt.Errorf("topic %q is not part of %s", topic, p)
}

// TopicLabel renders a topic identifier for display: "bond_angles" -> "bond angles".
func TopicLabel(topic string) string {
	return strings.ReplaceAll(topic, "_", " ")
}
