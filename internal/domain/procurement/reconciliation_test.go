package procurement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovalPolicy_RequiredStages(t *testing.T) {
	policy := DefaultApprovalPolicy()
	tests := []struct {
		total string
		roles []identity.Role
	}{
		{"0.01", nil},
		{"500", nil},
		{"500.01", []identity.Role{identity.RoleDivisionLeader}},
		{"5000", []identity.Role{identity.RoleDivisionLeader}},
		{"5000.01", []identity.Role{identity.RoleDivisionLeader, identity.RoleOperationsManager}},
		{"25000", []identity.Role{identity.RoleDivisionLeader, identity.RoleOperationsManager}},
		{"25000.01", []identity.Role{identity.RoleDivisionLeader, identity.RoleOperationsManager, identity.RoleExecutive}},
	}
	for _, tt := range tests {
		t.Run(tt.total, func(t *testing.T) {
			stages := policy.RequiredStages(dec(tt.total))
			require.Len(t, stages, len(tt.roles))
			for i, s := range stages {
				assert.Equal(t, i+1, s.Stage)
				assert.Equal(t, tt.roles[i], s.Role)
			}
		})
	}
}

func TestApprovalPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultApprovalPolicy().Validate())

	p := DefaultApprovalPolicy()
	p.ExecutiveThreshold = dec("1000")
	assert.Error(t, p.Validate())

	p = DefaultApprovalPolicy()
	p.AutoApproveLimit = dec("-1")
	assert.Error(t, p.Validate())
}

func TestTolerance_Allowed(t *testing.T) {
	tol := DefaultTolerance()
	assert.True(t, tol.Allowed(dec("1000")).Equal(dec("20")))
	assert.True(t, tol.Allowed(dec("100")).Equal(dec("5")))
	assert.True(t, tol.Allowed(dec("0")).Equal(dec("5")))
}

// issuedWithTax is 10 x $100 plus $80 tax, with half the goods received
func issuedWithTax(t *testing.T) *PurchaseOrder {
	t.Helper()
	po := newTestOrder(t)
	item := addLine(t, po, "10", "100")
	require.NoError(t, po.SetTax(dec("80")))
	require.NoError(t, po.Submit(DefaultApprovalPolicy(), po.RequestedBy))
	require.NoError(t, po.Approve(leaderOf(po), ""))
	require.NoError(t, po.Issue("", po.RequestedBy))
	_, err := po.Receive([]ReceiveLine{{ItemID: item.ID, Quantity: dec("5")}}, uuid.New(), "", "")
	require.NoError(t, err)
	return po
}

func TestReconcile(t *testing.T) {
	po := issuedWithTax(t)
	invoice := func(amount string, status InvoiceStatus) Invoice {
		return Invoice{PurchaseOrderID: po.ID, Amount: dec(amount), Status: status}
	}

	tests := []struct {
		name     string
		invoices []Invoice
		status   ReconciliationStatus
		within   bool
		variance string
	}{
		{"none", nil, ReconciliationNoInvoice, false, "-540"},
		{"exact", []Invoice{invoice("540", InvoiceStatusRecorded)}, ReconciliationMatched, true, "0"},
		{"split", []Invoice{invoice("300", InvoiceStatusRecorded), invoice("240", InvoiceStatusPaid)}, ReconciliationMatched, true, "0"},
		{"under within tolerance", []Invoice{invoice("530", InvoiceStatusRecorded)}, ReconciliationMatched, true, "-10"},
		{"over billed", []Invoice{invoice("560", InvoiceStatusRecorded)}, ReconciliationOverBilled, false, "20"},
		{"under billed", []Invoice{invoice("520", InvoiceStatusRecorded)}, ReconciliationUnderBilled, false, "-20"},
		{"void ignored", []Invoice{invoice("540", InvoiceStatusRecorded), invoice("900", InvoiceStatusVoid)}, ReconciliationMatched, true, "0"},
		{"only void", []Invoice{invoice("540", InvoiceStatusVoid)}, ReconciliationNoInvoice, false, "-540"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Reconcile(po, tt.invoices, DefaultTolerance())
			assert.True(t, rec.Expected.Equal(dec("540")), rec.Expected.String())
			assert.True(t, rec.ProratedTax.Equal(dec("40")))
			assert.True(t, rec.Allowed.Equal(dec("10.8")), rec.Allowed.String())
			assert.True(t, rec.Ordered.Equal(dec("1080")))
			assert.Equal(t, tt.status, rec.Status)
			assert.Equal(t, tt.within, rec.WithinTolerance)
			assert.True(t, rec.Variance.Equal(dec(tt.variance)), rec.Variance.String())
		})
	}
}

func TestReconcile_IgnoresOtherOrders(t *testing.T) {
	po := issuedWithTax(t)
	stray := Invoice{PurchaseOrderID: uuid.New(), Amount: dec("540"), Status: InvoiceStatusRecorded}
	rec := Reconcile(po, []Invoice{stray}, DefaultTolerance())
	assert.Equal(t, ReconciliationNoInvoice, rec.Status)
	assert.Equal(t, 0, rec.InvoiceCount)
}

func TestNewInvoice(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	t.Run("draft order rejected", func(t *testing.T) {
		_, err := NewInvoice(newTestOrder(t), NewInvoiceParams{Number: "A-1", Amount: dec("10"), InvoiceDate: day})
		assertCode(t, err, "INVALID_STATE")
	})

	po := issuedWithTax(t)

	t.Run("due date from terms", func(t *testing.T) {
		inv, err := NewInvoice(po, NewInvoiceParams{Number: " A-1 ", Amount: dec("540.004"), InvoiceDate: day, TermsDays: 30})
		require.NoError(t, err)
		assert.Equal(t, "A-1", inv.Number)
		assert.Equal(t, po.VendorID, inv.VendorID)
		assert.True(t, inv.Amount.Equal(dec("540")))
		require.NotNil(t, inv.DueDate)
		assert.Equal(t, day.AddDate(0, 0, 30), *inv.DueDate)
		assert.Equal(t, InvoiceStatusRecorded, inv.Status)
		require.Len(t, inv.GetDomainEvents(), 1)
		assert.True(t, inv.IsOverdue(day.AddDate(0, 0, 31)))
	})

	t.Run("validation", func(t *testing.T) {
		_, err := NewInvoice(po, NewInvoiceParams{Number: "", Amount: dec("1"), InvoiceDate: day})
		assert.Error(t, err)
		_, err = NewInvoice(po, NewInvoiceParams{Number: "A-2", Amount: dec("0"), InvoiceDate: day})
		assert.Error(t, err)
		_, err = NewInvoice(po, NewInvoiceParams{Number: "A-2", Amount: dec("1")})
		assert.Error(t, err)
		early := day.AddDate(0, 0, -1)
		_, err = NewInvoice(po, NewInvoiceParams{Number: "A-2", Amount: dec("1"), InvoiceDate: day, DueDate: &early})
		assert.Error(t, err)
	})
}

func TestInvoice_VoidAndPay(t *testing.T) {
	po := issuedWithTax(t)
	inv, err := NewInvoice(po, NewInvoiceParams{Number: "B-9", Amount: dec("100"), InvoiceDate: time.Now()})
	require.NoError(t, err)

	assert.Error(t, inv.Void("", uuid.New()))
	require.NoError(t, inv.Void("Entered twice", uuid.New()))
	assert.Equal(t, InvoiceStatusVoid, inv.Status)
	assert.Error(t, inv.MarkPaid())
	assert.False(t, inv.IsOverdue(time.Now().AddDate(1, 0, 0)))

	other, err := NewInvoice(po, NewInvoiceParams{Number: "B-10", Amount: dec("100"), InvoiceDate: time.Now()})
	require.NoError(t, err)
	require.NoError(t, other.MarkPaid())
	assert.Error(t, other.Void("late", uuid.New()))
}

func TestNewHistoryEntry(t *testing.T) {
	po := approvedOrder(t)
	events := po.GetDomainEvents()

	created := NewHistoryEntry(events[0].(AuditedEvent))
	assert.Equal(t, po.ID, created.PurchaseOrderID)
	assert.Equal(t, Status(""), created.FromStatus)
	assert.Equal(t, StatusDraft, created.ToStatus)
	assert.Equal(t, po.RequestedBy, created.ActorID)

	submitted := NewHistoryEntry(events[1].(AuditedEvent))
	assert.Equal(t, StatusDraft, submitted.FromStatus)
	assert.Equal(t, StatusSubmitted, submitted.ToStatus)

	approved := NewHistoryEntry(events[2].(AuditedEvent))
	assert.Equal(t, StatusSubmitted, approved.FromStatus)
	assert.Equal(t, StatusApproved, approved.ToStatus)
	assert.Contains(t, approved.Summary, "automatically")
}
