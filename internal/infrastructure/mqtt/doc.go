// Package mqtt provides the MQTT transport for botlink.
//
// It wraps paho.mqtt.golang behind a small surface the engine consumes:
// Publish, Subscribe, connection callbacks, and health checks. Topic
// builders for the per-device channel scheme live here as well, so the
// exact topic strings appear in exactly one place.
//
// The client tracks its own subscriptions and restores them after the
// paho auto-reconnect kicks in, which is what lets the engine treat
// "reconnected" as a pure re-baselining event rather than a transport
// setup problem.
//
// Connection lifecycle:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	client.SetOnDisconnect(func(err error) { ... })
//	client.Subscribe(mqtt.Topics{Device: id}.Status(), handler)
//	defer client.Close()
package mqtt
