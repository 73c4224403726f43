package dto

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type RegisterResponse struct {
	UserID            string `json:"userId"`
	PersonalAccountID string `json:"personalAccountId"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse either carries a full session or, when the user has
// two-factor enabled, only a short-lived pending token to exchange at the
// OTP endpoint.
type LoginResponse struct {
	SessionToken      string `json:"sessionToken,omitempty"`
	ExpiresIn         int64  `json:"expiresIn,omitempty"`
	TwoFactorRequired bool   `json:"twoFactorRequired,omitempty"`
	PendingToken      string `json:"pendingToken,omitempty"`
}

type OTPRequest struct {
	PendingToken string `json:"pendingToken"`
	Code         string `json:"code"`
}
