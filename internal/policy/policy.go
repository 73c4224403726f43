// Package policy evaluates per-resource authorization rules as pure
// predicates over an explicit request context. Default deny: anything not
// explicitly granted is false.
package policy

import "github.com/aliumairdev/saaskit/internal/domain"

// Context carries the acting user, the selected current account, and the
// actor's membership row in that account (nil when not a member). It is
// threaded explicitly through domain calls; there is no ambient state.
type Context struct {
	User       *domain.User
	Account    *domain.Account
	Membership *domain.AccountUser
}

// Authenticated reports whether any user is acting.
func (c Context) Authenticated() bool { return c.User != nil }

// AccountOwner reports whether the actor owns the current account.
// Ownership is the account's owner_id attribute, not a role flag.
func (c Context) AccountOwner() bool {
	return c.User != nil && c.Account != nil && c.Account.OwnerID == c.User.ID
}

// AccountAdmin reports whether the actor is the owner or carries the admin
// role on their membership.
func (c Context) AccountAdmin() bool {
	if c.AccountOwner() {
		return true
	}
	return c.User != nil && c.Account != nil && c.Membership != nil && c.Membership.Admin()
}

// AccountMember reports whether any membership row links the actor to the
// current account.
func (c Context) AccountMember() bool {
	return c.User != nil && c.Account != nil && c.Membership != nil
}
