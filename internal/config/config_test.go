package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("FRONTEND_ORIGIN", "http://localhost:5173")
	t.Setenv("JWT_ACCESS_SECRET", "access-secret-0123456789")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret-0123456789")
}

func TestLoadFile_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, ":4000", cfg.Addr())
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "kana-auth", cfg.JWTIssuer)
	assert.Equal(t, "kana-app", cfg.JWTAudience)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL())
	assert.Equal(t, 30*24*time.Hour, cfg.RefreshTTL())
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.False(t, cfg.CookieSecure)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "8081")
	t.Setenv("APP_ENV", "production")
	t.Setenv("FRONTEND_ORIGIN", "https://kana.example, https://www.kana.example ,")
	t.Setenv("REFRESH_TOKEN_EXPIRES_IN", "7d")
	t.Setenv("ACCESS_TOKEN_EXPIRES_IN", "5m")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://kana.example", "https://www.kana.example"}, cfg.Origins())
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL())
	assert.Equal(t, 5*time.Minute, cfg.AccessTTL())
	assert.True(t, cfg.CookieSecure)
}

func TestLoadFile_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "FRONTEND_ORIGIN=http://localhost:3000\n" +
		"JWT_ACCESS_SECRET=file-access-secret-123\n" +
		"JWT_REFRESH_SECRET=file-refresh-secret-123\n" +
		"PORT=5000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Origins())
}

func TestLoadFile_Validation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "missing origin", key: "FRONTEND_ORIGIN", val: ""},
		{name: "origin without scheme", key: "FRONTEND_ORIGIN", val: "localhost:5173"},
		{name: "short access secret", key: "JWT_ACCESS_SECRET", val: "short"},
		{name: "short refresh secret", key: "JWT_REFRESH_SECRET", val: "short"},
		{name: "bad env", key: "APP_ENV", val: "staging"},
		{name: "bad port", key: "PORT", val: "0"},
		{name: "bad cost", key: "BCRYPT_COST", val: "99"},
		{name: "bad log format", key: "LOG_FORMAT", val: "xml"},
		{name: "bad refresh ttl", key: "REFRESH_TOKEN_EXPIRES_IN", val: "forever"},
		{name: "bad access ttl", key: "ACCESS_TOKEN_EXPIRES_IN", val: "-1m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)

			_, err := LoadFile("")
			assert.Error(t, err)
		})
	}
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "30d", want: 30 * 24 * time.Hour},
		{in: "1d", want: 24 * time.Hour},
		{in: "15m", want: 15 * time.Minute},
		{in: "1h30m", want: 90 * time.Minute},
		{in: "0d", wantErr: true},
		{in: "xd", wantErr: true},
		{in: "0s", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTTL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
