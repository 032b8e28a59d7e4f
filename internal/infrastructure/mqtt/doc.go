// Package mqtt publishes pairing events to an MQTT broker.
//
// The service only publishes; it never subscribes. Each successful issuance
// produces one non-retained message on Topics.CodeIssued:
//
//	{"packaging_type":"box-v2","attempts":1,"expires_in":86400,"timestamp":"..."}
//
// Pairing codes and tokens are never published. A retained status message on
// Topics.SystemStatus (backed by a Last Will) lets subscribers see whether the
// service is up.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishEvent(mqtt.Topics{}.CodeIssued(), event)
package mqtt
