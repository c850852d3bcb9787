// Package state holds the canonical mirror of the remote device's
// reported status.
//
// The device publishes its state over an asynchronous transport as a
// mix of full snapshots and partial deltas, possibly out of order,
// possibly duplicated. This package reconciles those into one coherent
// tree under two rules:
//
//   - Sparse everywhere: absence of a field or map key means "value not
//     yet known", never "value is zero". Every scalar is a pointer and
//     every section is optional.
//   - Merges never erase: a delta that omits a field leaves the
//     previously known value in place. Applying the same delta twice
//     yields the same tree as applying it once.
//
// The Store serialises writes, hands out deep-copied snapshots, and
// notifies subscribers after each fully applied mutation with the prior
// and new snapshots. Callers never mutate the live tree.
package state
