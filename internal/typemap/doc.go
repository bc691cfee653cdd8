// Package typemap converts Go types declared by procedure authors into
// procedure type tags.
//
// A Mapper starts with default mappings for text, integers, floats,
// booleans, lists, string-keyed maps, the graph entity types and the empty
// interface. Callers may Register additional mappings before compilation;
// the most recent registration for a type wins and takes precedence over the
// kind-based defaults.
package typemap
