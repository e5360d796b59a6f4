package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/abhinav/feedback-service/internal/api/dto"
	"github.com/abhinav/feedback-service/internal/domain"
	"github.com/abhinav/feedback-service/internal/service"
	apperrors "github.com/abhinav/feedback-service/pkg/util"
)

// FeedbackHandler exposes feedback capture and retrieval.
type FeedbackHandler struct {
	feedback *service.FeedbackService
}

// NewFeedbackHandler constructs handler.
func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedbackService}
}

// Create handles POST /api/feedback.
func (h *FeedbackHandler) Create(c *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if errs := req.Validate(); len(errs) > 0 {
		return apperrors.NewValidationError("validation failed", errs)
	}

	feedback := &domain.Feedback{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
		Rating:  req.Rating,
	}
	if err := h.feedback.Create(c.UserContext(), feedback); err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"feedback": dto.NewFeedbackResponse(feedback)},
	})
}

// List handles GET /api/feedback.
func (h *FeedbackHandler) List(c *fiber.Ctx) error {
	feedbacks, err := h.feedback.List(c.UserContext())
	if err != nil {
		return err
	}

	responses := make([]dto.FeedbackResponse, 0, len(feedbacks))
	for _, feedback := range feedbacks {
		responses = append(responses, dto.NewFeedbackResponse(feedback))
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"feedbacks": responses}})
}

// GetByID handles GET /api/feedback/:id.
func (h *FeedbackHandler) GetByID(c *fiber.Ctx) error {
	feedback, err := h.feedback.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"feedback": dto.NewFeedbackResponse(feedback)}})
}
