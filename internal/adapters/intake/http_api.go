// Package intake hosts the submission gateways: the REST API, the SMTP
// hop for mail-in postings and the one-shot CLI used by fixer-vet.
package intake

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fixerhq/fixer-moderation/internal/core"
)

// jobRequest is the wire shape of a full moderation request
type jobRequest struct {
	PosterID    string  `json:"poster_id"`
	PosterEmail string  `json:"poster_email"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// contentRequest asks for the content rules alone
type contentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// paymentRequest asks for the amount rules alone
type paymentRequest struct {
	Amount float64 `json:"amount"`
}

// checkResponse is the wire shape of a rules-only result
type checkResponse struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
	Rule     string `json:"rule,omitempty"`
}

// verdictResponse is the wire shape of a full pipeline verdict
type verdictResponse struct {
	VerdictID  string    `json:"verdict_id"`
	Approved   bool      `json:"approved"`
	Reason     string    `json:"reason,omitempty"`
	Rule       string    `json:"rule,omitempty"`
	ReviewedBy string    `json:"reviewed_by"`
	DecidedAt  time.Time `json:"decided_at"`
}

// HTTPGateway serves the moderation REST API
type HTTPGateway struct {
	service    *core.ModerationService
	logger     *zap.Logger
	listenAddr string
	server     *http.Server
}

// NewHTTPGateway creates a new REST gateway
func NewHTTPGateway(service *core.ModerationService, logger *zap.Logger, listenAddr string) *HTTPGateway {
	return &HTTPGateway{
		service:    service,
		logger:     logger,
		listenAddr: listenAddr,
	}
}

// router wires the gin routes. Separate from Start so tests can exercise
// the handlers without a listener.
func (g *HTTPGateway) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", g.handleHealth)
	r.GET("/metrics", gin.WrapH(g.service.Metrics().Handler()))

	v1 := r.Group("/v1/moderation")
	{
		v1.POST("/jobs", g.handleJob)
		v1.POST("/content", g.handleContent)
		v1.POST("/payments", g.handlePayment)
	}

	return r
}

// Start begins serving in the background
func (g *HTTPGateway) Start() error {
	g.server = &http.Server{
		Addr:         g.listenAddr,
		Handler:      g.router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	g.logger.Info("HTTP gateway starting", zap.String("address", g.listenAddr))

	go func() {
		if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			g.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the server down, letting in-flight requests finish
func (g *HTTPGateway) Stop() error {
	if g.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return g.server.Shutdown(ctx)
}

// ProcessSubmission moderates a submission directly, bypassing HTTP.
// Mainly used for testing or direct calls.
func (g *HTTPGateway) ProcessSubmission(ctx context.Context, sub *core.JobSubmission) (*core.ModerationVerdict, error) {
	return g.service.ModerateSubmission(ctx, sub)
}

func (g *HTTPGateway) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleJob runs the full moderation pipeline. A rejection is a normal
// verdict and still answers 200.
func (g *HTTPGateway) handleJob(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub := &core.JobSubmission{
		PosterID:    req.PosterID,
		PosterEmail: req.PosterEmail,
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		Source:      "http",
		SubmittedAt: time.Now(),
	}

	verdict, err := g.service.ModerateSubmission(c.Request.Context(), sub)
	if err != nil {
		g.logger.Error("Failed to moderate submission", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "moderation failed"})
		return
	}

	c.JSON(http.StatusOK, verdictResponse{
		VerdictID:  verdict.VerdictID,
		Approved:   verdict.Approved,
		Reason:     verdict.Reason,
		Rule:       verdict.Rule,
		ReviewedBy: verdict.ReviewedBy,
		DecidedAt:  verdict.DecidedAt,
	})
}

// handleContent runs the content rules alone
func (g *HTTPGateway) handleContent(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := g.service.CheckContent(req.Title, req.Description)
	c.JSON(http.StatusOK, checkResponse{
		Approved: res.Approved,
		Reason:   res.Reason,
		Rule:     res.Rule,
	})
}

// handlePayment runs the amount rules alone
func (g *HTTPGateway) handlePayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := g.service.CheckAmount(req.Amount)
	c.JSON(http.StatusOK, checkResponse{
		Approved: res.Approved,
		Reason:   res.Reason,
		Rule:     res.Rule,
	})
}
