package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hanzalakhan/portfolio-backend/internal/content"
	"github.com/hanzalakhan/portfolio-backend/internal/model"
	"github.com/hanzalakhan/portfolio-backend/internal/util"
	"github.com/hanzalakhan/portfolio-backend/internal/validation"
)

// ContentHandler fronts the adjacent content store. All routes degrade to
// 503 when no content store is configured.
type ContentHandler struct {
	mgr *content.Manager
}

func NewContentHandler(mgr *content.Manager) *ContentHandler {
	return &ContentHandler{mgr: mgr}
}

func (h *ContentHandler) RegisterRoutes(app *fiber.App, adminAuth fiber.Handler) {
	app.Get("/api/testimonials", h.ListTestimonials)
	app.Post("/api/testimonials", h.SubmitTestimonial)
	app.Post("/api/contact", h.SubmitContact)

	admin := app.Group("/api/admin", adminAuth)
	admin.Get("/testimonials", h.ListAllTestimonials)
	admin.Put("/testimonials/:id", h.ModerateTestimonial)
	admin.Delete("/testimonials/:id", h.DeleteTestimonial)
	admin.Get("/contact", h.ListContactMessages)
	admin.Put("/contact/:id", h.MarkContactRead)
}

func (h *ContentHandler) notConfigured(c *fiber.Ctx) error {
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Code:    fiber.StatusServiceUnavailable,
		Message: "Content store not configured",
	})
}

func (h *ContentHandler) ListTestimonials(c *fiber.Ctx) error {
	if !h.mgr.Configured() {
		return h.notConfigured(c)
	}
	testimonials, err := h.mgr.ListTestimonials(c.Context(), true)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "Failed to fetch testimonials",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get testimonials",
		Data:    testimonials,
	})
}

func (h *ContentHandler) SubmitTestimonial(c *fiber.Ctx) error {
	if !h.mgr.Configured() {
		return h.notConfigured(c)
	}
	var t model.Testimonial
	if err := c.BodyParser(&t); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "Invalid request body",
		}, err)
	}

	t.Name = validation.SanitizeString(t.Name)
	t.Role = validation.SanitizeString(t.Role)
	t.Company = validation.SanitizeString(t.Company)
	t.Content = validation.SanitizeString(t.Content)

	if errs := validation.ValidateTestimonial(&t); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":            "Invalid testimonial",
			"validationErrors": errs,
		})
	}

	if err := h.mgr.CreateTestimonial(c.Context(), &t); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "Failed to submit testimonial",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Testimonial submitted for review",
		Data:    fiber.Map{"id": t.ID},
	})
}

func (h *ContentHandler) SubmitContact(c *fiber.Ctx) error {
	if !h.mgr.Configured() {
		return h.notConfigured(c)
	}
	var msg model.ContactMessage
	if err := c.BodyParser(&msg); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "Invalid request body",
		}, err)
	}

	msg.Name = validation.SanitizeString(msg.Name)
	msg.Email = validation.SanitizeEmail(msg.Email)
	msg.Subject = validation.SanitizeString(msg.Subject)
	msg.Message = validation.SanitizeString(msg.Message)

	if strings.TrimSpace(msg.Name) == "" || msg.Email == "" || strings.TrimSpace(msg.Message) == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "Name, a valid email and a message are required",
		})
	}

	if err := h.mgr.CreateContactMessage(c.Context(), &msg); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "Failed to submit contact message",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Message received",
		Data:    fiber.Map{"id": msg.ID},
	})
}

func (h *ContentHandler) ListAllTestimonials(c *fiber.Ctx) error {
	if !h.mgr.Configured() {
		return h.notConfigured(c)
	}
	testimonials, err := h.mgr.ListTestimonials(c.Context(), false)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "Failed to fetch testimonials",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get testimonials",
		Data:    testimonials,
	})
}

func (h *ContentHandler) ModerateTestimonial(c *fiber.Ctx) error {
	if !h.mgr.Configured() {
		return h.notConfigured(c)
	}
	var body struct {
		Approved bool `json:"approved"`
	}
	if err := c.BodyParser(&body); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "Invalid request body",
		}, err)
	}
	if err := h.mgr.SetTestimonialApproval(c.Context(), c.Params("id"), body.Approved); err != nil {
		return h.contentError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Testimonial updated",
	})
}

func (h *ContentHandler) DeleteTestimonial(c *fiber.Ctx) error {
	if !h.mgr.Configured() {
		return h.notConfigured(c)
	}
	if err := h.mgr.DeleteTestimonial(c.Context(), c.Params("id")); err != nil {
		return h.contentError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Testimonial deleted",
	})
}

func (h *ContentHandler) ListContactMessages(c *fiber.Ctx) error {
	if !h.mgr.Configured() {
		return h.notConfigured(c)
	}
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)
	messages, total, err := h.mgr.ListContactMessages(c.Context(), page, limit)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "Failed to fetch contact messages",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get contact messages",
		Data:       messages,
		Pagination: util.NewPagination(page, limit, int(total)),
	})
}

func (h *ContentHandler) MarkContactRead(c *fiber.Ctx) error {
	if !h.mgr.Configured() {
		return h.notConfigured(c)
	}
	if err := h.mgr.MarkContactRead(c.Context(), c.Params("id")); err != nil {
		return h.contentError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Message marked as read",
	})
}

func (h *ContentHandler) contentError(c *fiber.Ctx, err error) error {
	if errors.Is(err, content.ErrNotConfigured) {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusServiceUnavailable,
			Message: "Content store not configured",
		})
	}
	if strings.Contains(err.Error(), "not found") {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "Not found",
		})
	}
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Message: "Content operation failed",
	}, err)
}
