// Package codec translates between Go values and the device's JSON
// wire format.
//
// Outbound commands are node trees wrapped in an rpc_request envelope
// whose label is the correlation id. Inbound payloads are either state
// trees (full snapshots and partial deltas share one decoder), reply
// envelopes, or log events. The rest of the engine depends only on the
// structured shapes defined here, never on raw JSON.
package codec
