// Package canon implements deterministic canonical byte encodings for the
// structures the rest of the kernel hashes and signs.
//
// Two independent implementations of this package, fed the same semantic
// input, must produce byte-identical output. Every downstream hash, proof and
// signature depends on that property holding, so nothing here is permitted to
// depend on map iteration order, float formatting quirks, or field order as
// declared in a Go struct.
package canon
