// Package influxdb writes pairing metrics to InfluxDB v2.
//
// One point is written per issued code:
//
//	measurement: pairing_issuance
//	tags:        packaging_type ("none" when not supplied)
//	fields:      attempts, collisions
//
// A rising collisions field is the early signal that the live code population
// is approaching the size of the code space.
//
// Writes are batched (influxdb.batch_size / influxdb.flush_interval) and never
// block the request path.
package influxdb
