// Package metrics records settings apply metrics in InfluxDB.
//
// The integration is optional (metrics.enabled in config.yaml). When
// enabled, one point is written per apply attempt: the machine name as a
// tag, with accepted flag, validation error count, and handler duration
// as fields. Writes are batched and non-blocking; a broken InfluxDB
// connection degrades to dropped points, never to failed requests.
package metrics
