package service

const (
	OutcomeSuccess            = "success"
	OutcomeInvalidInput       = "invalid_input"
	OutcomeUsernameTaken      = "username_taken"
	OutcomeShopNamesTaken     = "shop_names_taken"
	OutcomeConflict           = "conflict"
	OutcomeUserNotFound       = "user_not_found"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeError              = "error"
)

// AuthMetrics records authentication outcomes.
type AuthMetrics interface {
	ObserveSignup(outcome string)
	ObserveSignin(outcome string)
}
