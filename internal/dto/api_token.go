package dto

type APITokenCreateRequest struct {
	Name      string `json:"name"`
	ExpiresAt string `json:"expiresAt,omitempty"` // RFC 3339, empty for no expiry
}

// APITokenCreateResponse is the only place the plaintext secret ever
// appears; it is not retrievable afterwards.
type APITokenCreateResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token"`
}
