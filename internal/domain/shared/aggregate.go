package shared

// AggregateRoot is a consistency boundary saved and versioned as one unit
type AggregateRoot interface {
	Entity
	GetVersion() int
	MarkModified()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	PullDomainEvents() []DomainEvent
}

// BaseAggregateRoot carries the optimistic-lock version and the events raised
// since the aggregate was loaded. Repositories compare Version-1 with the stored
// row, so every mutation must go through MarkModified exactly once.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int
	domainEvents []DomainEvent
}

func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion bumps the version without touching UpdatedAt
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// MarkModified records a state change: UpdatedAt moves to now and the version
// is bumped
func (a *BaseAggregateRoot) MarkModified() {
	a.Touch()
	a.Version++
}

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns the pending events without clearing them
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// PullDomainEvents returns the pending events and forgets them, so a retried
// save does not publish twice
func (a *BaseAggregateRoot) PullDomainEvents() []DomainEvent {
	events := a.domainEvents
	a.domainEvents = nil
	return events
}

// NewBaseAggregateRoot starts a fresh aggregate at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}
