package authflowrepo

import "time"

// AuthFlowState is what the server remembers between sending the browser to
// the identity provider and receiving the callback.
type AuthFlowState struct {
	CodeVerifier string
	Nonce        string
	CallbackURL  string
	CreatedAt    time.Time
}

type Repo interface {
	Upsert(state string, authState *AuthFlowState) error
	// Take returns the state and removes it, so a state value can be redeemed once.
	Take(state string) (*AuthFlowState, error)
	Delete(state string) error
}
