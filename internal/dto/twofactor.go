package dto

// TwoFactorSetupResponse is returned once when provisioning begins. Backup
// codes are shown here and never again.
type TwoFactorSetupResponse struct {
	Secret          string   `json:"secret"`
	ProvisioningURI string   `json:"provisioningUri"`
	BackupCodes     []string `json:"backupCodes"`
}

type TwoFactorConfirmRequest struct {
	Code string `json:"code"`
}
