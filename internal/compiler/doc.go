// Package compiler turns procedure declaration groups into callable
// handles.
//
// For each group the compiler checks the constructor, finds the resource
// fields to inject and derives one signature per member by mapping the
// member's argument and record struct fields through a typemap.Mapper.
// Capabilities are resolved per call, not at compile time.
//
// Failure granularity:
//   - No usable constructor, or an unexported resource field: the whole
//     group fails with a *CompilationError and no handles.
//   - An unmappable field, a duplicate or a malformed member: only that
//     member fails; the remaining handles are returned with the error.
package compiler
