package models

// AccessControlList is attached to every storable resource. It names the
// minimum security tier a caller must hold, and optionally narrows access to
// callers belonging to at least one required circle or named explicitly in
// the identity allow-list.
type AccessControlList struct {
	RequiredTier SecurityTier `json:"requiredTier"`

	// RequiredCircles — when non-empty the caller must share at least one.
	RequiredCircles []string `json:"requiredCircles,omitempty"`

	// RequiredIdentities — explicit allow-list, ORed with the circle check.
	RequiredIdentities []Identity `json:"requiredIdentities,omitempty"`
}
