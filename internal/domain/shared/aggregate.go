package shared

// AggregateRoot is implemented by records that are updated under optimistic locking
type AggregateRoot interface {
	Entity
	GetVersion() int
}

// BaseAggregateRoot adds the optimistic-lock version to BaseEntity.
// Repositories compare Version on update and advance it after a successful write.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion advances the version after a persisted update
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}
