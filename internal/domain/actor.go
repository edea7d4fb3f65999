package domain

// Actor identifies the caller of a mutating operation. It replaces any
// ambient "current user" state: handlers resolve the actor once per request
// and thread it explicitly into service calls.
//
// The zero value is the anonymous actor.
type Actor struct {
	UserID int64
}

// Anonymous reports whether the actor carries no authenticated identity.
func (a Actor) Anonymous() bool {
	return a.UserID == 0
}

// Owns reports whether the actor owns the entity with the given owner
// reference. An entity without an owner (nil) is owned by no one and may be
// mutated by any caller.
func (a Actor) Owns(ownerID *int64) bool {
	if ownerID == nil {
		return true
	}
	return !a.Anonymous() && a.UserID == *ownerID
}
