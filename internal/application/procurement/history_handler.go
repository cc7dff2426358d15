package procurement

import (
	"context"
	"fmt"

	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// HistoryHandler writes every purchase order and invoice event to the audit trail.
// Redelivered events are absorbed by the unique event ID in the store.
type HistoryHandler struct {
	history procurement.HistoryRepository
	logger  *zap.Logger
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(history procurement.HistoryRepository, logger *zap.Logger) *HistoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryHandler{history: history, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *HistoryHandler) EventTypes() []string {
	return append(procurement.PurchaseOrderEventTypes(),
		procurement.EventTypeInvoiceRecorded,
		procurement.EventTypeInvoiceVoided,
	)
}

// Handle appends the history entry for an audited event
func (h *HistoryHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	audited, ok := event.(procurement.AuditedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()))
		return fmt.Errorf("event %s does not carry purchase order history", event.EventType())
	}

	entry := procurement.NewHistoryEntry(audited)
	if err := h.history.Append(ctx, &entry); err != nil {
		h.logger.Error("Failed to append purchase order history",
			zap.String("order_id", entry.PurchaseOrderID.String()),
			zap.String("event_type", entry.EventType),
			zap.Error(err))
		return err
	}
	return nil
}
