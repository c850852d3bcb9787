// Package command implements correlated command dispatch: each outbound
// command carries a unique label, and the correlator matches the
// device's asynchronous rpc_ok/rpc_error replies back to the waiting
// caller.
//
// The Correlator owns the outstanding-command table and guarantees
// every registered command reaches exactly one terminal state. The
// Dispatcher wraps commands in the request envelope, registers before
// publishing, and arms the reply deadline. Callers hold a Pending
// handle and wait on it with a context.
package command
