package config_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	gconfig "github.com/goliatone/go-config/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/groceria/groceria-auth"
	"github.com/groceria/groceria-auth/config"
)

var _ auth.Config = (*config.Auth)(nil)

func loadAppJSON(t *testing.T) *config.BaseConfig {
	t.Helper()
	raw, err := os.ReadFile("app.json")
	require.NoError(t, err)

	cfg := &config.BaseConfig{}
	require.NoError(t, json.Unmarshal(raw, cfg))
	// secrets are hidden from JSON and come from koanf in production
	cfg.Auth.SigningKey = "test-secret"
	return cfg
}

func TestAppJSON_IsValid(t *testing.T) {
	cfg := loadAppJSON(t)

	require.NoError(t, cfg.Validate())

	a := cfg.GetAuth()
	assert.Equal(t, 10*time.Minute, a.GetVerifyTokenTTL())
	assert.Equal(t, 20*time.Minute, a.GetResendTokenTTL())
	assert.Equal(t, 30*time.Minute, a.GetResetTokenTTL())
	assert.Equal(t, 3*time.Hour, a.GetSessionTokenTTL())
	assert.Equal(t, config.DefaultVerifySuccessURL, a.GetVerifySuccessURL())
	assert.True(t, a.GetProtectAdminRoutes())
	assert.Empty(t, a.GetBootstrapSuperAdminEmails())
	assert.Equal(t, config.DriverSQLite, cfg.GetPersistence().GetDriver())
}

func TestAppJSON_LoadsThroughGoConfig(t *testing.T) {
	t.Setenv("GROCERIA_AUTH__ISSUER", "groceria-staging")

	cfg, err := gconfig.New(&config.BaseConfig{},
		gconfig.WithLoader(
			gconfig.FileProvider[*config.BaseConfig]("app.json"),
			gconfig.EnvProvider[*config.BaseConfig]("GROCERIA_", "__", gconfig.DefaultOrderFlag),
		),
	)
	require.NoError(t, err)
	require.NoError(t, cfg.Load(context.Background()))

	a := cfg.Raw().GetAuth()
	assert.Equal(t, "change-me-in-production", a.GetSigningKey())
	assert.Equal(t, "groceria-staging", a.GetIssuer())
	assert.Equal(t, 3*time.Hour, a.GetSessionTokenTTL())
	assert.Equal(t, "/api/v1", cfg.Raw().GetServer().GetAPIPrefix())
}

func TestAuth_Defaults(t *testing.T) {
	a := &config.Auth{SigningKey: "secret"}

	assert.Equal(t, "user", a.GetContextKey())
	assert.Equal(t, "Bearer", a.GetAuthScheme())
	assert.Equal(t, "header:Authorization", a.GetTokenLookup())
	assert.Equal(t, 3*time.Hour, a.GetSessionTokenTTL())
	assert.Equal(t, config.DefaultVerifyExpiredURL, a.GetVerifyExpiredURL())
	assert.Equal(t, "NG", a.GetDefaultPhoneRegion())
	assert.True(t, a.GetProtectAdminRoutes())

	off := false
	a.ProtectAdminRoutes = &off
	assert.False(t, a.GetProtectAdminRoutes())
}

func TestAuth_BadDurationFallsBack(t *testing.T) {
	a := &config.Auth{VerifyTokenTTLExpr: "soon"}
	assert.Equal(t, 10*time.Minute, a.GetVerifyTokenTTL())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.BaseConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *config.BaseConfig) {}},
		{name: "empty signing key", mutate: func(c *config.BaseConfig) { c.Auth.SigningKey = "" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *config.BaseConfig) { c.Persistence.Driver = "oracle" }, wantErr: true},
		{name: "mongo without uri", mutate: func(c *config.BaseConfig) {
			c.Mongo.Enabled = true
			c.Mongo.URI = ""
		}, wantErr: true},
		{name: "smtp without host", mutate: func(c *config.BaseConfig) {
			c.Mail.Driver = config.MailDriverSMTP
			c.Mail.Host = ""
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadAppJSON(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
