package trust

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRegistry_IsTrusted(t *testing.T) {
	r := NewRegistry(
		[]string{"poster-42", "  poster-7  ", ""},
		[]string{"Partner.example.com", " city.gov ", ""},
		zap.NewNop(),
	)

	tests := []struct {
		name     string
		posterID string
		email    string
		want     bool
	}{
		{name: "trusted poster id", posterID: "poster-42", want: true},
		{name: "trimmed poster id", posterID: "poster-7", want: true},
		{name: "unknown poster id", posterID: "poster-1", want: false},
		{name: "trusted domain", email: "jobs@partner.example.com", want: true},
		{name: "trusted domain case insensitive", email: "jobs@PARTNER.EXAMPLE.COM", want: true},
		{name: "trimmed domain", email: "clerk@city.gov", want: true},
		{name: "unknown domain", email: "someone@elsewhere.net", want: false},
		{name: "malformed email", email: "not-an-email", want: false},
		{name: "empty everything", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.IsTrusted(tt.posterID, tt.email))
		})
	}
}

func TestRegistry_EmptyListsTrustNobody(t *testing.T) {
	r := NewRegistry(nil, nil, nil)
	assert.False(t, r.IsTrusted("poster-42", "jobs@partner.example.com"))
}
