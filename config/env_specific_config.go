package config

import (
	"fmt"

	"github.com/cabpool/cabpool-backend/logger"
	"gopkg.in/yaml.v3"
)

// DefaultAllowedOrigins returns the CORS allow-list used when ALLOWED_ORIGINS is unset.
// Only development has one; deployed environments must name their frontend explicitly.
func DefaultAllowedOrigins(env Environment) []string {
	if env == EnvDevelopment {
		return []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173"}
	}
	return nil
}

// RedactedYAML renders the effective configuration with every credential masked.
func (c *Config) RedactedYAML() (string, error) {
	redacted := *c
	redacted.Database.Password = mask(c.Database.Password)
	redacted.Supabase.AnonKey = mask(c.Supabase.AnonKey)
	redacted.Supabase.ServiceKey = mask(c.Supabase.ServiceKey)
	redacted.Redis.Password = mask(c.Redis.Password)
	redacted.Email.ResendAPIKey = mask(c.Email.ResendAPIKey)

	out, err := yaml.Marshal(&redacted)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(out), nil
}

func mask(secret string) string {
	return logger.MaskSensitiveString(secret, 3, 2)
}
