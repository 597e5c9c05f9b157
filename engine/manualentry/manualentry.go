// Package manualentry persists out-of-band hour entries a user logs by
// hand, outside the calendar-driven reconciliation flow (component J).
package manualentry

import (
	"fmt"
	"time"

	"github.com/bvtime/reconciler/engine/core"
)

// Entry is one manual time entry (§4.J).
type Entry struct {
	ID          core.ID    `json:"entry_id"`
	WorkItemID  int        `json:"work_item_id"`
	Hours       float64    `json:"hours"`
	Date        string     `json:"date"`
	Description string     `json:"description"`
	UserID      string     `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	Synced      bool       `json:"synced"`
	SyncedAt    *time.Time `json:"synced_at,omitempty"`
}

// Validate enforces §4.J's field rules: hours in (0, 24]; work_item_id >
// 0; description and user_id non-empty.
func (e Entry) Validate() error {
	if e.Hours <= 0 || e.Hours > 24 {
		return core.NewError(fmt.Errorf("hours %.2f out of range (0, 24]", e.Hours), core.KindOutOfRange, map[string]any{"hours": e.Hours})
	}
	if e.WorkItemID <= 0 {
		return core.NewError(fmt.Errorf("work_item_id %d must be positive", e.WorkItemID), core.KindInvalidInput, map[string]any{"work_item_id": e.WorkItemID})
	}
	if e.Description == "" {
		return core.NewError(fmt.Errorf("description is required"), core.KindMissingField, map[string]any{"field": "description"})
	}
	if e.UserID == "" {
		return core.NewError(fmt.Errorf("user_id is required"), core.KindMissingField, map[string]any{"field": "user_id"})
	}
	return nil
}
