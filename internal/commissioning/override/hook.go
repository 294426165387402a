package override

import (
	"github.com/nerrad567/ets2ha/internal/commissioning/model"
)

// Custom keys read by the generators.
const (
	KeyHAType         = "ha_type"
	KeyHAAddressType  = "ha_address_type"
	KeyHAInit         = "ha_init"
	KeyLinknxDispName = "linknx_disp_name"
)

// Hook mutates the Custom maps of a built model before generation.
type Hook interface {
	Apply(m *model.Model) error
}

// HookFunc adapts an ordinary function to Hook.
type HookFunc func(m *model.Model) error

// Apply calls f(m).
func (f HookFunc) Apply(m *model.Model) error {
	return f(m)
}

// Chain applies hooks in order and stops at the first error. Nil entries are
// skipped.
type Chain []Hook

// Apply runs every hook in the chain.
func (c Chain) Apply(m *model.Model) error {
	for _, h := range c {
		if h == nil {
			continue
		}
		if err := h.Apply(m); err != nil {
			return err
		}
	}
	return nil
}
