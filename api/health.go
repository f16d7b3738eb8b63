// Package api defines public API contracts for i2c-transfer.
package api

// Health defines liveness of the transfer runtime and readiness of buses.
type Health interface {
	LivenessCheck() error
	ReadinessCheck(bus string) error
}
