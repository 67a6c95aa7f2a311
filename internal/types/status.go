package types

// Status is a type for the lifecycle status of a persisted resource in the database.
// This is distinct from the business status of an aggregate (contract, subscription)
// and is used to soft-delete or archive rows without losing history.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)
