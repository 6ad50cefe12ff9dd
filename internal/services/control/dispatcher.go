// Package control implements the accessory action dispatcher: it maps an
// accessory's control type to hardware provider calls, including the
// fire-and-forget delayed off for timed accessories.
package control

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/railstack/layoutd/internal/apperrors"
	"github.com/railstack/layoutd/internal/hardware"
	"github.com/railstack/layoutd/internal/models"
)

const (
	// DefaultPulseMs is the fixed pulse width for toggle accessories.
	// The accessory's own timedMs is never consulted for toggle.
	DefaultPulseMs = 250

	// DefaultTimedMs is the fallback delayed-off duration when neither the
	// request nor the accessory configures one.
	DefaultTimedMs = 5000

	// MaxPulseMs bounds explicit pulse requests.
	MaxPulseMs = 60_000

	// MaxTimedMs bounds timed-off durations (one hour).
	MaxTimedMs = 3_600_000
)

// ApplyRequest is the optional body of an apply action.
type ApplyRequest struct {
	// State is "on" or "off" for onOff accessories; default "on".
	State string `json:"state,omitempty"`
	// Milliseconds overrides the delayed-off duration for timed accessories.
	Milliseconds int `json:"milliseconds,omitempty"`
}

// ApplyResult describes the action that was performed.
type ApplyResult struct {
	Status       string             `json:"status"`
	Action       models.ControlType `json:"action"`
	State        string             `json:"state,omitempty"`
	Milliseconds int                `json:"milliseconds,omitempty"`
}

// Dispatcher routes accessory actions to the hardware provider. One
// pending delayed-off timer is tracked per accessory so a later off (or a
// re-apply) cancels the previous one.
type Dispatcher struct {
	provider hardware.Provider
	logger   *zap.Logger

	mu      sync.Mutex
	pending map[uint]*time.Timer
}

// NewDispatcher builds a dispatcher around the given provider.
func NewDispatcher(provider hardware.Provider, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		provider: provider,
		logger:   logger,
		pending:  make(map[uint]*time.Timer),
	}
}

// On forwards an explicit on command, cancelling any pending timed off.
func (d *Dispatcher) On(acc *models.Accessory) error {
	d.cancelPending(acc.ID)
	return d.provider.SetOn(acc.Address)
}

// Off forwards an explicit off command, cancelling any pending timed off.
func (d *Dispatcher) Off(acc *models.Accessory) error {
	d.cancelPending(acc.ID)
	return d.provider.SetOff(acc.Address)
}

// Pulse forwards an explicit pulse command after validating the width.
func (d *Dispatcher) Pulse(acc *models.Accessory, ms int) error {
	if ms <= 0 || ms > MaxPulseMs {
		return apperrors.Validationf("milliseconds must be between 1 and %d", MaxPulseMs)
	}
	return d.provider.Pulse(acc.Address, ms)
}

// Apply performs the action implied by the accessory's control type.
// Inactive accessories are rejected; the explicit On/Off/Pulse commands
// stay available as maintenance overrides.
func (d *Dispatcher) Apply(acc *models.Accessory, req ApplyRequest) (*ApplyResult, error) {
	if !acc.IsActive {
		return nil, apperrors.Validation("Accessory is inactive")
	}

	switch acc.ControlType {
	case models.ControlOnOff:
		return d.applyOnOff(acc, req.State)
	case models.ControlToggle:
		if err := d.provider.Pulse(acc.Address, DefaultPulseMs); err != nil {
			return nil, err
		}
		return &ApplyResult{Status: "ok", Action: models.ControlToggle, Milliseconds: DefaultPulseMs}, nil
	case models.ControlTimed:
		return d.applyTimed(acc, req.Milliseconds)
	default:
		// The row's control type should always be one of the declared
		// values; anything else is a data-consistency problem.
		return nil, apperrors.Validationf("unknown control type %q", acc.ControlType)
	}
}

func (d *Dispatcher) applyOnOff(acc *models.Accessory, state string) (*ApplyResult, error) {
	if state == "" {
		state = "on"
	}
	switch state {
	case "on":
		if err := d.On(acc); err != nil {
			return nil, err
		}
	case "off":
		if err := d.Off(acc); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.Validationf("invalid state %q; expected \"on\" or \"off\"", state)
	}
	return &ApplyResult{Status: "ok", Action: models.ControlOnOff, State: state}, nil
}

func (d *Dispatcher) applyTimed(acc *models.Accessory, requestMs int) (*ApplyResult, error) {
	ms := requestMs
	if ms < 0 || ms > MaxTimedMs {
		return nil, apperrors.Validationf("milliseconds must be between 1 and %d", MaxTimedMs)
	}
	if ms == 0 {
		if acc.TimedMs != nil && *acc.TimedMs > 0 {
			ms = *acc.TimedMs
		} else {
			ms = DefaultTimedMs
		}
	}

	if err := d.provider.SetOn(acc.Address); err != nil {
		return nil, err
	}
	d.scheduleOff(acc.ID, acc.Address, ms)

	return &ApplyResult{Status: "ok", Action: models.ControlTimed, Milliseconds: ms}, nil
}

// scheduleOff arms the delayed off. The timer is detached from the request
// that created it: the caller returns immediately and a failing off call is
// logged, never surfaced.
func (d *Dispatcher) scheduleOff(id uint, address string, ms int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.pending[id]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(time.Duration(ms)*time.Millisecond, func() {
		d.mu.Lock()
		// A Stop() can lose the race against a timer that already fired.
		// Only the timer still tracked for this accessory may turn it off;
		// a superseded one must not evict its replacement from the map or
		// override whatever command replaced it.
		if d.pending[id] != t {
			d.mu.Unlock()
			return
		}
		delete(d.pending, id)
		d.mu.Unlock()

		if err := d.provider.SetOff(address); err != nil {
			d.logger.Warn("delayed off failed",
				zap.Uint("accessoryId", id),
				zap.String("address", address),
				zap.Error(err))
		}
	})
	d.pending[id] = t
}

func (d *Dispatcher) cancelPending(id uint) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.pending[id]; ok {
		t.Stop()
		delete(d.pending, id)
		d.logger.Debug("cancelled pending timed off", zap.Uint("accessoryId", id))
	}
}

// PendingCount reports how many delayed offs are armed.
func (d *Dispatcher) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
