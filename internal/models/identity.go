package models

// Identity is an authenticated caller as resolved by the identity provider.
// The core does not distinguish requester and provider accounts by role; a
// caller's relation to an auction (owner, bidder, stranger) decides what
// they may do and see.
type Identity struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}
