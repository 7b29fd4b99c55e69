package trust

import (
	"strings"

	"go.uber.org/zap"
)

// Registry checks posters against the configured trust lists. Trusted
// posters skip the content rules; payment bounds still apply to them.
type Registry struct {
	posterIDs map[string]struct{}
	domains   []string
	logger    *zap.Logger
}

// NewRegistry creates a trust registry from poster ids and email domains
func NewRegistry(posterIDs []string, domains []string, logger *zap.Logger) *Registry {
	ids := make(map[string]struct{}, len(posterIDs))
	for _, id := range posterIDs {
		id = strings.TrimSpace(id)
		if id != "" {
			ids[id] = struct{}{}
		}
	}

	// Normalize domains (lowercase)
	normalizedDomains := make([]string, 0, len(domains))
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" {
			normalizedDomains = append(normalizedDomains, domain)
		}
	}

	if (len(ids) > 0 || len(normalizedDomains) > 0) && logger != nil {
		logger.Info("Initialized trust registry",
			zap.Int("poster_ids", len(ids)),
			zap.Strings("domains", normalizedDomains))
	}

	return &Registry{
		posterIDs: ids,
		domains:   normalizedDomains,
		logger:    logger,
	}
}

// IsTrusted checks whether the poster id or the email's domain is on the
// trust list
func (r *Registry) IsTrusted(posterID, email string) bool {
	if _, ok := r.posterIDs[posterID]; ok {
		if r.logger != nil {
			r.logger.Debug("Poster id is trusted", zap.String("poster_id", posterID))
		}
		return true
	}

	if len(r.domains) == 0 {
		return false
	}

	// Extract domain from email address
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	domain := strings.ToLower(parts[1])

	for _, trusted := range r.domains {
		if trusted == domain {
			if r.logger != nil {
				r.logger.Debug("Email domain is trusted",
					zap.String("domain", domain),
					zap.String("email", email))
			}
			return true
		}
	}

	return false
}
