package procurement

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is one line of a purchase order's audit trail
type HistoryEntry struct {
	ID              uuid.UUID `json:"id"`
	PurchaseOrderID uuid.UUID `json:"purchase_order_id"`
	EventID         uuid.UUID `json:"event_id"`
	EventType       string    `json:"event_type"`
	FromStatus      Status    `json:"from_status,omitempty"`
	ToStatus        Status    `json:"to_status,omitempty"`
	ActorID         uuid.UUID `json:"actor_id"`
	Summary         string    `json:"summary"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// NewHistoryEntry builds the audit entry for an event
func NewHistoryEntry(event AuditedEvent) HistoryEntry {
	from, to := event.Transition()
	if from == to {
		from, to = "", ""
	}
	return HistoryEntry{
		ID:              uuid.New(),
		PurchaseOrderID: event.PurchaseOrderID(),
		EventID:         event.EventID(),
		EventType:       event.EventType(),
		FromStatus:      from,
		ToStatus:        to,
		ActorID:         event.ActorID(),
		Summary:         event.Summary(),
		OccurredAt:      event.OccurredAt(),
	}
}
