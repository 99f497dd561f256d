package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteCommandEvent records an issued shade command as a time-series point.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Example:
//
//	client.WriteCommandEvent("dev-1a2b3c4d", "open", "manual", "manual")
func (c *Client) WriteCommandEvent(deviceID, action, source, mode string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"shade_commands",
		map[string]string{
			"device_id": deviceID,
			"action":    action,
			"source":    source,
			"mode":      mode,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteWeatherObservation records a normalised weather fetch.
//
// Used for correlating shade activity against outdoor conditions.
func (c *Client) WriteWeatherObservation(locationKey, condition string, tempF float64, isDay bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"weather",
		map[string]string{
			"location":  locationKey,
			"condition": condition,
		},
		map[string]interface{}{
			"temp_f": tempF,
			"is_day": isDay,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
