package procurement

// Status represents the lifecycle state of a purchase order
type Status string

const (
	StatusDraft             Status = "DRAFT"
	StatusSubmitted         Status = "SUBMITTED"
	StatusApproved          Status = "APPROVED"
	StatusIssued            Status = "ISSUED"
	StatusPartiallyReceived Status = "PARTIALLY_RECEIVED"
	StatusReceived          Status = "RECEIVED"
	StatusPaid              Status = "PAID"
	StatusRejected          Status = "REJECTED"
	StatusCancelled         Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	StatusDraft:             {StatusSubmitted, StatusCancelled},
	StatusSubmitted:         {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:          {StatusIssued, StatusCancelled},
	StatusIssued:            {StatusPartiallyReceived, StatusReceived, StatusCancelled},
	StatusPartiallyReceived: {StatusPartiallyReceived, StatusReceived},
	StatusReceived:          {StatusPaid},
	StatusRejected:          {StatusDraft},
	StatusPaid:              {},
	StatusCancelled:         {},
}

// AllStatuses returns every status in lifecycle order
func AllStatuses() []Status {
	return []Status{
		StatusDraft, StatusSubmitted, StatusApproved, StatusIssued,
		StatusPartiallyReceived, StatusReceived, StatusPaid,
		StatusRejected, StatusCancelled,
	}
}

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks the transition table
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition exists
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// IsEditable reports whether line items and details may change
func (s Status) IsEditable() bool {
	return s == StatusDraft
}

// CanReceive reports whether goods may be received against the order
func (s Status) CanReceive() bool {
	return s == StatusIssued || s == StatusPartiallyReceived
}

// CanInvoice reports whether vendor invoices may be recorded
func (s Status) CanInvoice() bool {
	return s == StatusIssued || s == StatusPartiallyReceived || s == StatusReceived
}

// IsCommitted reports whether the order counts toward committed spend
func (s Status) IsCommitted() bool {
	for _, c := range CommittedStatuses() {
		if s == c {
			return true
		}
	}
	return false
}

// IsDeletable reports whether the order may be soft-deleted
func (s Status) IsDeletable() bool {
	return s == StatusDraft || s == StatusRejected || s == StatusCancelled
}

// CommittedStatuses lists the statuses that count toward committed spend
func CommittedStatuses() []Status {
	return []Status{StatusApproved, StatusIssued, StatusPartiallyReceived, StatusReceived, StatusPaid}
}
