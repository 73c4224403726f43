package dto

type AccountCreateRequest struct {
	Name         string `json:"name"`
	Subdomain    string `json:"subdomain,omitempty"`
	BillingEmail string `json:"billingEmail,omitempty"`
}

type AccountUpdateRequest struct {
	Name             *string `json:"name,omitempty"`
	Subdomain        *string `json:"subdomain,omitempty"`
	BillingEmail     *string `json:"billingEmail,omitempty"`
	ExtraBillingInfo *string `json:"extraBillingInfo,omitempty"`
}

type MemberRolesRequest struct {
	Roles []string `json:"roles"`
}
