package handler

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hanzalakhan/portfolio-backend/internal/middleware"
	"github.com/hanzalakhan/portfolio-backend/internal/portfolio"
	"github.com/hanzalakhan/portfolio-backend/internal/security"
	"github.com/hanzalakhan/portfolio-backend/internal/util"
	"github.com/hanzalakhan/portfolio-backend/internal/validation"
)

// Save endpoint policy: 5 requests per actor+IP per 10 minutes.
const (
	saveMaxRequests = 5
	saveWindow      = 10 * time.Minute
)

type PortfolioHandler struct {
	svc     *portfolio.Service
	limiter *security.RateLimiter
}

func NewPortfolioHandler(svc *portfolio.Service, limiter *security.RateLimiter) *PortfolioHandler {
	return &PortfolioHandler{svc: svc, limiter: limiter}
}

func (h *PortfolioHandler) RegisterRoutes(app *fiber.App, adminAuth fiber.Handler) {
	app.Get("/api/portfolio", h.Get)
	app.Post("/api/portfolio", adminAuth, h.Save)
}

// Get serves the full document. Cache headers are disabled since the
// document changes between admin saves.
func (h *PortfolioHandler) Get(c *fiber.Ctx) error {
	doc, err := h.svc.Get(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch portfolio data",
		})
	}
	util.NoCache(c)
	return c.JSON(doc)
}

// Save validates, sanitizes and persists a submitted document. Validation
// failures produce the full field-error list and no write at all.
func (h *PortfolioHandler) Save(c *fiber.Ctx) error {
	adminEmail := middleware.AdminEmail(c)

	clientIP := c.Get("X-Forwarded-For")
	if clientIP == "" {
		clientIP = c.IP()
	}
	check := h.limiter.Check(adminEmail+"-"+clientIP, saveMaxRequests, saveWindow)
	if !check.Allowed {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(check.RetryAfter))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":      "Rate limit exceeded",
			"message":    "Too many update requests. Please wait before trying again.",
			"retryAfter": check.RetryAfter,
		})
	}

	log.Printf("admin %s updating portfolio data", adminEmail)

	result := validation.ValidatePortfolioJSON(c.Body())
	if !result.Valid {
		log.Printf("portfolio data validation failed: %d errors", len(result.Errors))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":            "Invalid portfolio data",
			"message":          "The submitted data contains validation errors.",
			"validationErrors": result.Errors,
		})
	}

	if err := h.svc.Save(c.Context(), result.Sanitized, adminEmail); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":      "Failed to save portfolio data",
			"details":    err.Error(),
			"persistent": false,
		})
	}

	util.NoCache(c)
	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Portfolio data saved successfully",
		"savedBy":    adminEmail,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"persistent": h.svc.Persistent(),
	})
}
