package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/classforge/classforge/internal/domain"
)

const (
	// LocalTenantID is the key to retrieve tenant_id from context
	LocalTenantID = "tenant_id"
	// LocalTenant is the key to retrieve the full tenant from context
	LocalTenant = "tenant"
	// LocalAPIKey is the key to retrieve the API key record from context
	LocalAPIKey = "api_key"
)

// TenantRepository interface for tenant lookup
type TenantRepository interface {
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*domain.Tenant, error)
}

// APIKeyLookup resolves an individual API key record by its hash.
type APIKeyLookup interface {
	GetByHash(ctx context.Context, hash string) (*domain.APIKey, error)
}

type authConfig struct {
	keys           APIKeyLookup
	lastUsedWorker *LastUsedWorker
}

type AuthOption func(*authConfig)

// WithKeyTracking enqueues last_used_at updates for the key that
// authenticated each request. The lookup and update run off the request path.
func WithKeyTracking(keys APIKeyLookup, worker *LastUsedWorker) AuthOption {
	return func(cfg *authConfig) {
		cfg.keys = keys
		cfg.lastUsedWorker = worker
	}
}

// Auth creates an authentication middleware using API Key
func Auth(tenantRepo TenantRepository, opts ...AuthOption) fiber.Handler {
	var cfg authConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(c *fiber.Ctx) error {
		// 1. Extract Bearer token
		apiKey := extractBearerToken(c)
		if apiKey == "" {
			return domain.ErrUnauthorized
		}

		// 2. Generate API Key hash
		hash := hashAPIKey(apiKey)

		// 3. Lookup tenant by hash
		tenant, err := tenantRepo.GetByAPIKeyHash(c.Context(), hash)
		if err != nil {
			// Any error (not found or DB error) returns 401
			// Don't reveal whether API Key exists or not
			return domain.ErrUnauthorized
		}

		// 4. Verify tenant is active
		if !tenant.IsActive {
			return domain.ErrUnauthorized
		}

		// 5. Set tenant in context
		c.Locals(LocalTenantID, tenant.ID)
		c.Locals(LocalTenant, tenant)

		if cfg.keys != nil && cfg.lastUsedWorker != nil {
			go trackKeyUsage(cfg.keys, cfg.lastUsedWorker, hash)
		}

		return c.Next()
	}
}

func trackKeyUsage(keys APIKeyLookup, worker *LastUsedWorker, hash string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key, err := keys.GetByHash(ctx, hash)
	if err != nil || key == nil {
		return
	}
	worker.Enqueue(key.ID)
}

// extractBearerToken extracts token from Authorization header
func extractBearerToken(c *fiber.Ctx) string {
	auth := c.Get("Authorization")
	if auth == "" {
		return ""
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// hashAPIKey generates SHA-256 hash of API Key
func hashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(hash[:])
}

// GetTenantID retrieves tenant_id from Fiber context
func GetTenantID(c *fiber.Ctx) (uuid.UUID, error) {
	tenantID, ok := c.Locals(LocalTenantID).(uuid.UUID)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return tenantID, nil
}

// GetTenant retrieves full tenant from Fiber context
func GetTenant(c *fiber.Ctx) (*domain.Tenant, error) {
	tenant, ok := c.Locals(LocalTenant).(*domain.Tenant)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return tenant, nil
}
