// Package mqtt publishes Configurizer events to an MQTT broker.
//
// The broker integration is optional (mqtt.enabled in config.yaml). When
// enabled, the API server publishes a retained event to the machine's
// settings topic after every successful apply, so shop-floor subscribers
// always see the latest accepted batch.
//
// The client is publish-only: Configurizer consumes nothing from the
// broker. Reconnection is handled by the paho library with the
// connection-state tracking in this package.
//
// Thread Safety: All methods are safe for concurrent use.
package mqtt
