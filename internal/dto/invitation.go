package dto

type InvitationCreateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type InvitationListResponse struct {
	Pending []InvitationView `json:"pending"`
	Expired []InvitationView `json:"expired"`
}

type InvitationView struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	ExpiresAt  string  `json:"expiresAt"`
	AcceptedAt *string `json:"acceptedAt,omitempty"`
}
