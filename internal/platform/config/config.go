package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration so main stays lean.
type Server struct {
	Addr          string
	JWTSigningKey string
	TokenTTL      time.Duration
	AuditDir      string
	DatabaseURL   string
	AdminUsername string
	AdminPassword string
}

// FromEnv builds a Server config from environment variables. An empty
// DatabaseURL selects the in-memory stores.
func FromEnv() Server {
	addr := os.Getenv("VIGIL_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	signingKey := os.Getenv("VIGIL_JWT_SIGNING_KEY")
	if signingKey == "" {
		// Development default - must be overridden in production.
		signingKey = "dev-secret-key-change-in-production"
	}

	ttl := 60 * time.Minute
	if raw := os.Getenv("VIGIL_TOKEN_TTL_MINUTES"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			ttl = time.Duration(minutes) * time.Minute
		}
	}

	auditDir := os.Getenv("VIGIL_AUDIT_DIR")
	if auditDir == "" {
		auditDir = "logs"
	}

	adminUsername := os.Getenv("VIGIL_ADMIN_USERNAME")
	if adminUsername == "" {
		adminUsername = "admin"
	}
	adminPassword := os.Getenv("VIGIL_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: signingKey,
		TokenTTL:      ttl,
		AuditDir:      auditDir,
		DatabaseURL:   os.Getenv("VIGIL_DATABASE_URL"),
		AdminUsername: adminUsername,
		AdminPassword: adminPassword,
	}
}
