package procurement

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHistoryHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("appends the transition", func(t *testing.T) {
		repo := new(MockHistoryRepository)
		h := NewHistoryHandler(repo, nil)
		po := testOrder(t, uuid.New(), "100")
		require.NoError(t, po.Submit(procurement.DefaultApprovalPolicy(), po.RequestedBy))
		events := po.GetDomainEvents()
		require.NotEmpty(t, events)

		repo.On("Append", ctx, mock.MatchedBy(func(e *procurement.HistoryEntry) bool {
			return e.PurchaseOrderID == po.ID && e.EventID == events[0].EventID()
		})).Return(nil)

		require.NoError(t, h.Handle(ctx, events[0]))
		repo.AssertExpectations(t)
	})

	t.Run("repository errors propagate", func(t *testing.T) {
		repo := new(MockHistoryRepository)
		h := NewHistoryHandler(repo, nil)
		po := testOrder(t, uuid.New(), "100")
		require.NoError(t, po.Cancel("Job lost", po.RequestedBy))

		repo.On("Append", ctx, mock.Anything).Return(errors.New("db down"))

		assert.Error(t, h.Handle(ctx, po.GetDomainEvents()[0]))
	})

	t.Run("rejects events without order history", func(t *testing.T) {
		h := NewHistoryHandler(new(MockHistoryRepository), nil)
		event := shared.NewBaseDomainEvent("UserCreated", "User", uuid.New(), uuid.Nil)

		assert.Error(t, h.Handle(ctx, &event))
	})
}

func TestHistoryHandler_EventTypes(t *testing.T) {
	types := NewHistoryHandler(new(MockHistoryRepository), nil).EventTypes()

	assert.Contains(t, types, procurement.EventTypePurchaseOrderPaid)
	assert.Contains(t, types, procurement.EventTypeInvoiceRecorded)
	assert.Contains(t, types, procurement.EventTypeInvoiceVoided)
}
