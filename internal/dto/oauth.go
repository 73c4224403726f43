package dto

// OAuthCallbackRequest is the normalized provider payload handed to the
// domain by the (external) OAuth callback collaborator.
type OAuthCallbackRequest struct {
	Provider string `json:"provider"`
	UID      string `json:"uid"`
	Info     struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"info"`
	Credentials struct {
		Token        string `json:"token"`
		Secret       string `json:"secret,omitempty"`
		RefreshToken string `json:"refreshToken,omitempty"`
		ExpiresAt    *int64 `json:"expiresAt,omitempty"` // unix seconds
	} `json:"credentials"`
	Raw map[string]any `json:"raw,omitempty"`
}
