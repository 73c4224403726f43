package policy

// InvitationPolicy gates invitation actions: every action requires the
// actor to be the account owner or an admin.
type InvitationPolicy struct{}

func (InvitationPolicy) CanIndex(c Context) bool   { return c.AccountAdmin() }
func (InvitationPolicy) CanShow(c Context) bool    { return c.AccountAdmin() }
func (InvitationPolicy) CanCreate(c Context) bool  { return c.AccountAdmin() }
func (InvitationPolicy) CanDestroy(c Context) bool { return c.AccountAdmin() }
func (InvitationPolicy) CanResend(c Context) bool  { return c.AccountAdmin() }
