package types

import "github.com/m-mizutani/goerr/v2"

// OwnerID identifies the tenant (user/business) that owns memory
// records and conversations.
type OwnerID string

// Validate checks the owner ID format
func (o OwnerID) Validate() error {
	if o == "" {
		return goerr.New("owner ID must not be empty")
	}
	if len(o) > 128 {
		return goerr.New("owner ID too long", goerr.V("length", len(o)))
	}
	return nil
}

// String returns the string representation of the owner ID
func (o OwnerID) String() string {
	return string(o)
}
