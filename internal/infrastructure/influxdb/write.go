package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementIssuance    = "pairing_issuance"
	MeasurementConsumption = "pairing_consumption"
)

// unspecifiedPackaging tags points whose request carried no packaging type.
const unspecifiedPackaging = "none"

// WritePairingIssuance records one successful issuance. attempts is the number
// of conditional sets it took; collisions is derived as attempts-1.
//
// Example:
//
//	client.WritePairingIssuance("box-v2", 1)
//	// pairing_issuance,packaging_type=box-v2 attempts=1i,collisions=0i
func (c *Client) WritePairingIssuance(packagingType string, attempts int) {
	collisions := attempts - 1
	if collisions < 0 {
		collisions = 0
	}
	c.WritePoint(MeasurementIssuance,
		map[string]string{"packaging_type": packagingTag(packagingType)},
		map[string]any{"attempts": attempts, "collisions": collisions},
	)
}

// WritePairingConsumption records a redeemed code.
func (c *Client) WritePairingConsumption(packagingType string) {
	c.WritePoint(MeasurementConsumption,
		map[string]string{"packaging_type": packagingTag(packagingType)},
		map[string]any{"count": 1},
	)
}

// WritePoint writes an arbitrary point timestamped now. Dropped silently when
// the client is closed.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes an arbitrary point with an explicit timestamp.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]any, ts time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, ts))
}

func packagingTag(packagingType string) string {
	if packagingType == "" {
		return unspecifiedPackaging
	}
	return packagingType
}
