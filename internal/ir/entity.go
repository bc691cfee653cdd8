package ir

// Node is a graph node handed to or produced by a procedure.
type Node struct {
	ID         int64          `json:"id" yaml:"id"`
	Labels     []string       `json:"labels" yaml:"labels"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Relationship is a typed, directed edge between two nodes.
type Relationship struct {
	ID         int64          `json:"id" yaml:"id"`
	Type       string         `json:"type" yaml:"type"`
	StartID    int64          `json:"start_id" yaml:"start_id"`
	EndID      int64          `json:"end_id" yaml:"end_id"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Path is an alternating sequence of nodes and relationships.
// A well-formed path has exactly one more node than relationships.
type Path struct {
	Nodes         []Node         `json:"nodes" yaml:"nodes"`
	Relationships []Relationship `json:"relationships" yaml:"relationships"`
}

// Length returns the number of relationships in the path.
func (p Path) Length() int {
	return len(p.Relationships)
}
