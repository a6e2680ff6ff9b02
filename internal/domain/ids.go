package domain

// RecordID is the opaque identifier the insurance API assigns on creation.
// The portal never invents one.
type RecordID string

// DraftID identifies an in-progress form draft held by the portal.
type DraftID string

// UserID is the numeric GitHub id reported by the API, kept opaque.
type UserID string
