// Package toon implements TOON, a compact indentation-structured text
// notation with a bidirectional codec: Emit serializes a Value tree to
// TOON text and Parse reconstructs it, with round-trip fidelity as the
// central contract.
//
// # Data Model
//
// Scalars: null, bool, int, float, str
// Containers: sequence (list, tuple or set origin), mapping, record
//
// A record serializes exactly like a mapping; since no schema travels
// with the text it parses back as a mapping. A sequence's origin tag
// only selects the bracket marker on output.
//
// # Syntax
//
// Mapping entry:   key: value
// Nested mapping:  key:            (entries indented one level)
// Sequence:        key[N]:         (N "-" items indented one level)
//	                key(N):         tuple origin
//	                key{N}:         set origin
// Table:           key[N]{f1,f2}:  (N comma-joined rows, one per item)
//
// Indentation is exactly two spaces per level. A sequence of uniform
// records, where every item is a mapping with the identical ordered
// key set and only scalar values, is emitted in table form; everything
// else uses block form with "-" item markers.
//
// # Example
//
//	context:
//	  task: demo
//	hikes[2]{id,name,distanceKm}:
//	  1,Blue Lake Trail,7.5
//	  2,"Ridge, Overlook",9.2
//	misc(3):
//	  - 1
//	  - null
//	  - two
//
// # Errors
//
// Parse fails with ErrIndentation, ErrSyntax, ErrMalformedTableRow or
// ErrInvalidTableMarker, each carrying a line number retrievable with
// Line. Emit fails only with ErrCyclicStructure. The codec is pure and
// re-entrant: no shared state, no I/O, safe for concurrent callers.
package toon
