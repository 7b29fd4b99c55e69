package intake

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fixerhq/fixer-moderation/internal/core"
	"github.com/fixerhq/fixer-moderation/internal/ports"
	"github.com/fixerhq/fixer-moderation/internal/rules"
)

var (
	_ ports.SubmissionGateway = (*HTTPGateway)(nil)
	_ ports.SubmissionGateway = (*SMTPGateway)(nil)
	_ ports.SubmissionGateway = (*CLIGateway)(nil)
)

func newTestService(t *testing.T) *core.ModerationService {
	t.Helper()
	engine, err := rules.NewEngine(nil)
	require.NoError(t, err)
	return core.NewModerationService(engine, nil, nil, nil, nil, nil, zap.NewNop(), core.ServiceOptions{})
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewHTTPGateway(newTestService(t), zap.NewNop(), "127.0.0.1:0").router()
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHTTPGateway_ModerateJob(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(t, router, "/v1/moderation/jobs",
		`{"poster_id":"u-1","title":"Yard work","description":"Need help with yard work this weekend. Rake leaves and bag them.","amount":50}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"approved":true`)
	assert.Contains(t, w.Body.String(), `"reviewed_by":"rules"`)
	assert.Contains(t, w.Body.String(), `"verdict_id"`)
}

func TestHTTPGateway_RejectsBadContent(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(t, router, "/v1/moderation/jobs",
		`{"title":"Quick gig","description":"Easy work, cash only, no questions asked. Just deliver packages.","amount":50}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"approved":false`)
	assert.Contains(t, w.Body.String(), rules.RuleSuspiciousKeywords)
}

func TestHTTPGateway_MalformedJSON(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(t, router, "/v1/moderation/jobs", `{"title": `)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestHTTPGateway_ContentOnly(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(t, router, "/v1/moderation/content",
		`{"title":"Help","description":"Too short"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"approved":false`)
	assert.Contains(t, w.Body.String(), rules.RuleDescriptionLength)
}

func TestHTTPGateway_PaymentOnly(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(t, router, "/v1/moderation/payments", `{"amount":15000}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"approved":false`)
	assert.Contains(t, w.Body.String(), rules.RuleAmountTooHigh)
}

func TestHTTPGateway_Health(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestHTTPGateway_Metrics(t *testing.T) {
	router := newTestRouter(t)

	// Decide one submission so the counters have something to show
	postJSON(t, router, "/v1/moderation/jobs",
		`{"title":"Yard work","description":"Need help with yard work this weekend. Rake leaves and bag them.","amount":50}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fixer_moderation_verdicts_total")
	assert.Contains(t, w.Body.String(), "fixer_moderation_evaluation_duration_seconds")
}
