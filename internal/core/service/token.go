package service

import "github.com/google/uuid"

// SessionToken identifies the session context a network request was issued
// under. Login and logout mint a new token; a response carrying a token whose
// generation is no longer current is dropped at merge time instead of being
// applied to the cache.
type SessionToken struct {
	ID         string
	Generation uint64
}

// tokenSource is implemented by the session manager so that collaborators can
// capture the current token at request issuance.
type tokenSource interface {
	CurrentToken() SessionToken
}

func newToken(generation uint64) SessionToken {
	return SessionToken{ID: uuid.NewString(), Generation: generation}
}
