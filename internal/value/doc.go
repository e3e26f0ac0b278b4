// Package value implements the closed set of input value types a procedural
// graph accepts: float and integer scalars or vectors of width 1 to 4, plus the
// Image kind tag used by image inputs (which carry no numerical value).
//
// A Value is a small tagged union. Every switch over Kind in this module is
// meant to be exhaustive, so adding a kind is a compile-visible change.
package value
