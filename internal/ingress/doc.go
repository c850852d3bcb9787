// Package ingress routes inbound transport messages to the components
// that consume them: full snapshots and deltas to the state store,
// rpc_ok/rpc_error replies to the command correlator, and device log
// events to the registered callback.
//
// Routing is by topic. Decode failures are dropped, logged, and counted
// rather than propagated — a single bad message must never stall the
// stream.
package ingress
