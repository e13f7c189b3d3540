// Package receipt implements the per-engine-step Receipt: a self-hashing
// descriptor of one kernel step's inputs, params and outputs, optionally
// linked to the receipt that preceded it in the same run.
package receipt
