// Package refreshtokens declares the contract for the single refresh-token
// slot kept on every user record.
package refreshtokens

import "context"

// Repository stores and clears the current refresh token of a user. A user has
// at most one; storing a new token replaces the previous one.
type Repository interface {
	// Store overwrites the slot with token. Storing for a missing user returns
	// a not-found error.
	Store(ctx context.Context, userID string, token string) error

	// Clear empties the slot. Clearing an empty slot or a missing user is not
	// an error.
	Clear(ctx context.Context, userID string) error
}
