package service

type PasswordService interface {
	// Hash derives an encoded hash string suitable for persistence.
	Hash(password string) (string, error)
	// Verify checks password against an encoded hash. rehashNeeded signals
	// that the stored hash predates the current policy.
	Verify(password, encoded string) (ok bool, rehashNeeded bool)
}
