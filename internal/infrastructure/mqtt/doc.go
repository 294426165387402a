// Package mqtt publishes generated configuration to an MQTT broker.
//
// This package manages:
//   - Connection to the broker, bounded by a context and timeout
//   - Retained publishing with QoS validation
//   - Last Will and Testament (LWT) for offline detection
//
// A subscriber (a Home Assistant add-on, a linknx wrapper script) listens on
// the artifact topic and reloads its configuration when a new retained
// message arrives.
//
// # Security Considerations
//
//   - Use TLS (cfg.Broker.TLS=true) when the broker is not local
//   - Credentials are validated against the broker ACL
//
// # Usage
//
//	topics := mqtt.Topics{Root: cfg.Publish.Topic}
//	client, err := mqtt.Connect(ctx, cfg.MQTT, topics)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishRetained(topics.Artifact("homeass"), data, 1)
package mqtt
