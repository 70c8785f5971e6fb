package config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Auth holds token and account flow settings. It implements auth.Config.
type Auth struct {
	SigningKey           string   `koanf:"signing_key" json:"-"`
	Issuer               string   `koanf:"issuer" json:"issuer"`
	ContextKey           string   `koanf:"context_key" json:"context_key"`
	AuthScheme           string   `koanf:"auth_scheme" json:"auth_scheme"`
	TokenLookup          string   `koanf:"token_lookup" json:"token_lookup"`
	VerifyTokenTTLExpr   string   `koanf:"verify_token_ttl" json:"verify_token_ttl"`
	ResendTokenTTLExpr   string   `koanf:"resend_token_ttl" json:"resend_token_ttl"`
	ResetTokenTTLExpr    string   `koanf:"reset_token_ttl" json:"reset_token_ttl"`
	SessionTokenTTLExpr  string   `koanf:"session_token_ttl" json:"session_token_ttl"`
	PublicBaseURL        string   `koanf:"public_base_url" json:"public_base_url"`
	VerifySuccessURL     string   `koanf:"verify_success_url" json:"verify_success_url"`
	VerifyExpiredURL     string   `koanf:"verify_expired_url" json:"verify_expired_url"`
	DefaultPhoneRegion   string   `koanf:"default_phone_region" json:"default_phone_region"`
	UseHashid            bool     `koanf:"use_hashid" json:"use_hashid"`
	ProtectAdminRoutes   *bool    `koanf:"protect_admin_routes" json:"protect_admin_routes"`
	BootstrapSuperAdmins []string `koanf:"bootstrap_superadmin_emails" json:"bootstrap_superadmin_emails"`
}

const (
	DefaultVerifySuccessURL = "https://groceria-app.onrender.com//#/congrat"
	DefaultVerifyExpiredURL = "https://groceria-app.onrender.com//#/expired"
)

func (a Auth) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.SigningKey, validation.Required),
		validation.Field(&a.PublicBaseURL, validURL),
		validation.Field(&a.VerifySuccessURL, validURL),
		validation.Field(&a.VerifyExpiredURL, validURL),
	)
}

func (a *Auth) GetSigningKey() string { return a.SigningKey }

func (a *Auth) GetIssuer() string { return a.Issuer }

func (a *Auth) GetContextKey() string {
	if a.ContextKey == "" {
		return "user"
	}
	return a.ContextKey
}

func (a *Auth) GetAuthScheme() string {
	if a.AuthScheme == "" {
		return "Bearer"
	}
	return a.AuthScheme
}

func (a *Auth) GetTokenLookup() string {
	if a.TokenLookup == "" {
		return "header:Authorization"
	}
	return a.TokenLookup
}

func (a *Auth) GetVerifyTokenTTL() time.Duration {
	return parseDuration(a.VerifyTokenTTLExpr, 10*time.Minute)
}

func (a *Auth) GetResendTokenTTL() time.Duration {
	return parseDuration(a.ResendTokenTTLExpr, 20*time.Minute)
}

func (a *Auth) GetResetTokenTTL() time.Duration {
	return parseDuration(a.ResetTokenTTLExpr, 30*time.Minute)
}

func (a *Auth) GetSessionTokenTTL() time.Duration {
	return parseDuration(a.SessionTokenTTLExpr, 3*time.Hour)
}

func (a *Auth) GetPublicBaseURL() string { return a.PublicBaseURL }

func (a *Auth) GetVerifySuccessURL() string {
	if a.VerifySuccessURL == "" {
		return DefaultVerifySuccessURL
	}
	return a.VerifySuccessURL
}

func (a *Auth) GetVerifyExpiredURL() string {
	if a.VerifyExpiredURL == "" {
		return DefaultVerifyExpiredURL
	}
	return a.VerifyExpiredURL
}

func (a *Auth) GetDefaultPhoneRegion() string {
	if a.DefaultPhoneRegion == "" {
		return "NG"
	}
	return a.DefaultPhoneRegion
}

func (a *Auth) GetUseHashid() bool { return a.UseHashid }

// GetProtectAdminRoutes defaults to true when unset.
func (a *Auth) GetProtectAdminRoutes() bool {
	return a.ProtectAdminRoutes == nil || *a.ProtectAdminRoutes
}

func (a *Auth) GetBootstrapSuperAdminEmails() []string { return a.BootstrapSuperAdmins }
