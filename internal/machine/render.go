package machine

import "github.com/xtding233/prize-gacha/internal/inventory"

// StatusKind classifies a status message for display.
type StatusKind string

const (
	StatusPending StatusKind = "pending"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// Status is the last message shown to the user.
type Status struct {
	Message string     `json:"message"`
	Kind    StatusKind `json:"kind"`
}

// Renderer is the presentation layer. Callbacks run outside the controller's
// lock and receive copies, so a renderer may call back into the controller.
type Renderer interface {
	InventoryChanged(inv inventory.Inventory)
	StatusChanged(message string, kind StatusKind)
	TriggerEnabledChanged(enabled bool)
}

// NopRenderer ignores every callback.
type NopRenderer struct{}

func (NopRenderer) InventoryChanged(inventory.Inventory) {}
func (NopRenderer) StatusChanged(string, StatusKind)     {}
func (NopRenderer) TriggerEnabledChanged(bool)           {}

// Renderers fans callbacks out to several renderers in order.
type Renderers []Renderer

func (rs Renderers) InventoryChanged(inv inventory.Inventory) {
	for _, r := range rs {
		r.InventoryChanged(inv.Clone())
	}
}

func (rs Renderers) StatusChanged(message string, kind StatusKind) {
	for _, r := range rs {
		r.StatusChanged(message, kind)
	}
}

func (rs Renderers) TriggerEnabledChanged(enabled bool) {
	for _, r := range rs {
		r.TriggerEnabledChanged(enabled)
	}
}
