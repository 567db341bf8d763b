package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/datingassistent/payments/internal/config"
)

const webhookSecretHeader = "X-Webhook-Secret"

// WebhookAuth authenticates provider callbacks with two independent layers:
// a source IP allowlist (enforced only in production when configured) and a
// shared secret header (enforced whenever configured). An attacker passing
// both still cannot forge state changes, since the receiver re-fetches the
// authoritative status from the provider.
func WebhookAuth(cfg *config.Config, logger *slog.Logger) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(cfg.WebhookAllowedIPs))
	for _, ip := range cfg.WebhookAllowedIPs {
		allowed[ip] = struct{}{}
	}
	enforceIPs := cfg.IsProduction() && len(allowed) > 0

	return func(c *gin.Context) {
		if enforceIPs {
			if _, ok := allowed[c.ClientIP()]; !ok {
				logger.Warn("webhook call from unlisted source", slog.String("ip", c.ClientIP()))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
		}

		if cfg.WebhookSecret != "" {
			if !secretMatches(c, cfg.WebhookSecret) {
				logger.Warn("webhook call with invalid secret", slog.String("ip", c.ClientIP()))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
		}

		c.Next()
	}
}

func secretMatches(c *gin.Context, secret string) bool {
	candidate := c.GetHeader(webhookSecretHeader)
	if candidate == "" {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			candidate = strings.TrimSpace(authHeader[7:])
		}
	}
	if candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(secret)) == 1
}
