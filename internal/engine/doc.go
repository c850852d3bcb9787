// Package engine is the facade tying the device client together: it
// owns the state store, the command correlator and dispatcher, and the
// inbound message router, and drives them from transport lifecycle
// events.
//
// Lifecycle: Connect subscribes to the device's topics, requests a full
// state baseline, and reports Ready once it applies. On disconnect all
// outstanding commands fail immediately; on reconnect the engine
// re-baselines before reporting Ready again. State observed between
// Connecting and Ready is stale by definition and the engine says so
// through Readiness.
package engine
