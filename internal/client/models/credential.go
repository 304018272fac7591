package models

// CredentialRecord is the persisted form of one account: the salt, the
// derived hash and the work factor used. The plaintext password is never
// stored.
type CredentialRecord struct {
	Username   string
	Salt       []byte
	Hash       []byte
	Iterations int
}

// UserIdentity is the authenticated user every session operation is keyed by.
type UserIdentity struct {
	Username string
}
