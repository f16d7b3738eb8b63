// Package adapter provides adapters for i2c-transfer integration with external systems.
package adapter

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Transmission-Dynamics/i2c-transfer/pkg/i2c"
)

const instrumentationName = "github.com/Transmission-Dynamics/i2c-transfer"

// DeviceConfig builds the i2c device configuration from OpenTelemetry
// providers. Nil providers fall back to the global ones.
func DeviceConfig(tp trace.TracerProvider, mp metric.MeterProvider, openRetries int) i2c.Config {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	return i2c.Config{
		Tracer:      tp.Tracer(instrumentationName),
		Meter:       mp.Meter(instrumentationName),
		OpenRetries: openRetries,
	}
}
