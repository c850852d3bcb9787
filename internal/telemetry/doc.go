// Package telemetry exports device runtime readings to InfluxDB:
// resource usage, temperature, wifi level, and position, sampled from
// applied state changes. Writes are batched and non-blocking; the
// mirror works identically with telemetry disabled.
package telemetry
