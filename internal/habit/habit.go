// Package habit holds the domain model for recurring tasks and the pure
// logic that turns task definitions into per-day checklist items: the
// recurrence evaluator, the item materializer and the completion
// predicate. Nothing in this package touches storage.
package habit

import "errors"

// ErrInvalid marks bad caller input. It is always returned before any
// mutation happens.
var ErrInvalid = errors.New("invalid input")

// ErrNotFound marks a task, entry or item that does not exist for the
// given profile.
var ErrNotFound = errors.New("not found")

// DefaultProfileID is the profile used when a caller does not select one.
const DefaultProfileID = "default"

// NormalizeProfileID maps an empty profile id to the default profile.
// Every persisted record carries an explicit profile id; normalization
// happens once, at this boundary.
func NormalizeProfileID(profileID string) string {
	if profileID == "" {
		return DefaultProfileID
	}
	return profileID
}
