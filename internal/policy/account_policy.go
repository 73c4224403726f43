package policy

// AccountPolicy gates account actions. List scoping lives in the store
// (AccountStore.ListForUser) and runs before any count or pagination so
// inaccessible rows never leak into totals.
type AccountPolicy struct{}

// CanIndex: any authenticated user may list their own accounts.
func (AccountPolicy) CanIndex(c Context) bool { return c.Authenticated() }

// CanCreate: any authenticated user may create a new account.
func (AccountPolicy) CanCreate(c Context) bool { return c.Authenticated() }

// CanShow: members only.
func (AccountPolicy) CanShow(c Context) bool { return c.AccountMember() }

// CanSwitch mirrors CanShow.
func (AccountPolicy) CanSwitch(c Context) bool { return c.AccountMember() }

// CanUpdate: owner or admin.
func (AccountPolicy) CanUpdate(c Context) bool { return c.AccountAdmin() }

// CanManageMembers: owner or admin.
func (AccountPolicy) CanManageMembers(c Context) bool { return c.AccountAdmin() }

// CanInvite: owner or admin.
func (AccountPolicy) CanInvite(c Context) bool { return c.AccountAdmin() }

// CanDestroy: owner only, and never for personal accounts.
func (AccountPolicy) CanDestroy(c Context) bool {
	return c.AccountOwner() && c.Account != nil && !c.Account.Personal
}

// CanBilling: owner only.
func (AccountPolicy) CanBilling(c Context) bool { return c.AccountOwner() }
