package util

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"

	"github.com/hanzalakhan/portfolio-backend/internal/config"
)

type Pagination struct {
	Page      int `json:"page"`
	Limit     int `json:"limit"`
	Total     int `json:"total"`
	TotalPage int `json:"total_page"`
}

// NewPagination derives page math for list endpoints. Out-of-range inputs
// snap to the first page and the default page size.
func NewPagination(page, limit, total int) *Pagination {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	if total < 0 {
		total = 0
	}
	return &Pagination{
		Page:      page,
		Limit:     limit,
		Total:     total,
		TotalPage: (total + limit - 1) / limit,
	}
}

type SuccessResponseFormat struct {
	Code       int
	Message    string
	Data       any
	Pagination *Pagination
	Meta       any
}

type OrderedSuccessResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Meta       any         `json:"meta,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Data       any         `json:"data,omitempty"`
}

type ErrorResponseFormat struct {
	Code       int
	Message    string
	DevMessage string
	Details    any
	Trace      string
}

type OrderedErrorResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	DevMessage string `json:"dev_message,omitempty"`
	Details    any    `json:"details,omitempty"`
	Trace      string `json:"trace,omitempty"`
}

// SuccessResponse sends the standard success JSON shape.
func SuccessResponse(c *fiber.Ctx, params SuccessResponseFormat) error {
	code := params.Code
	if code == 0 {
		code = fiber.StatusOK
	}
	return c.Status(code).JSON(OrderedSuccessResponse{
		Success:    true,
		Message:    params.Message,
		Data:       params.Data,
		Pagination: params.Pagination,
		Meta:       params.Meta,
	})
}

// ErrorResponse sends the standard error JSON shape. Dev detail and stack
// traces only leave the process outside production.
func ErrorResponse(c *fiber.Ctx, params ErrorResponseFormat, errs ...error) error {
	response := OrderedErrorResponse{
		Success: false,
		Message: params.Message,
	}
	if params.Details != nil {
		response.Details = params.Details
	}
	if config.LoadAppConfig().Env != "production" {
		if len(errs) > 0 && errs[0] != nil {
			response.DevMessage = errs[0].Error()
			response.Trace = string(debug.Stack())
		}
		if params.DevMessage != "" {
			response.DevMessage = params.DevMessage
		}
		if params.Trace != "" {
			response.Trace = params.Trace
		}
	}

	code := params.Code
	if code == 0 {
		code = fiber.StatusInternalServerError
	}
	return c.Status(code).JSON(response)
}

// NoCache disables transport-layer caching: the document can change between
// admin saves.
func NoCache(c *fiber.Ctx) {
	c.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
	c.Set(fiber.HeaderPragma, "no-cache")
	c.Set(fiber.HeaderExpires, "0")
}
