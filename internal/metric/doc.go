// Package metric defines the engine's Prometheus metrics: inbound
// message counts by class, merge and baseline counts, command
// dispatch/settlement counters, and transport connection state.
//
// All recording methods tolerate a nil *Metrics so components can run
// unmetered in tests.
package metric
