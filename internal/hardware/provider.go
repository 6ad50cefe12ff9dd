// Package hardware abstracts the relay/accessory bus. The dispatcher only
// talks to the Provider interface so real bus drivers and test fakes can be
// swapped in at construction time.
package hardware

import (
	"time"

	"go.uber.org/zap"
)

// Provider is the sink for accessory commands. Address is an opaque
// hardware identifier string.
type Provider interface {
	SetOn(address string) error
	SetOff(address string) error
	Pulse(address string, ms int) error
}

// MockProvider logs commands instead of driving hardware. Pulse holds for
// the requested duration to mimic a real relay closure.
type MockProvider struct {
	Mode   string // "mock" | "gpio" | "mcp23017" | "modbus" ...
	logger *zap.Logger
}

// NewMockProvider returns a provider that only logs. Mode is recorded so
// operators can tell from the logs which backend is configured.
func NewMockProvider(mode string, logger *zap.Logger) *MockProvider {
	if mode == "" {
		mode = "mock"
	}
	return &MockProvider{Mode: mode, logger: logger}
}

func (p *MockProvider) SetOn(address string) error {
	p.logger.Info("hardware ON", zap.String("mode", p.Mode), zap.String("address", address))
	return nil
}

func (p *MockProvider) SetOff(address string) error {
	p.logger.Info("hardware OFF", zap.String("mode", p.Mode), zap.String("address", address))
	return nil
}

func (p *MockProvider) Pulse(address string, ms int) error {
	p.logger.Info("hardware PULSE", zap.String("mode", p.Mode), zap.String("address", address), zap.Int("ms", ms))
	time.Sleep(time.Duration(ms) * time.Millisecond)
	return nil
}
