package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/iris/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/iris/internal/domain"
)

// CompareService interface for the service
type CompareService interface {
	Compare(ctx context.Context, req *domain.ComparisonRequest, clientIP string) (*domain.ComparisonResponse, error)
}

// CompareHandler handles face comparison requests
type CompareHandler struct {
	service CompareService
	logger  *slog.Logger
}

// NewCompareHandler creates a new CompareHandler instance
func NewCompareHandler(service CompareService, logger *slog.Logger) *CompareHandler {
	return &CompareHandler{
		service: service,
		logger:  logger,
	}
}

// compareRequestBody mirrors domain.ComparisonRequest with pointers so that
// missing fields can be told apart from empty ones
type compareRequestBody struct {
	TargetURL *string `json:"target_url"`
	People    *[]struct {
		Name     *string `json:"name"`
		ImageURL *string `json:"image_url"`
	} `json:"people"`
}

func (b *compareRequestBody) toDomain() (*domain.ComparisonRequest, error) {
	if b.TargetURL == nil {
		return nil, fmt.Errorf("missing field target_url")
	}
	if b.People == nil {
		return nil, fmt.Errorf("missing field people")
	}

	req := &domain.ComparisonRequest{
		TargetURL: *b.TargetURL,
		People:    make([]domain.Candidate, 0, len(*b.People)),
	}
	for i, p := range *b.People {
		if p.Name == nil {
			return nil, fmt.Errorf("people[%d]: missing field name", i)
		}
		if p.ImageURL == nil {
			return nil, fmt.Errorf("people[%d]: missing field image_url", i)
		}
		req.People = append(req.People, domain.Candidate{Name: *p.Name, ImageURL: *p.ImageURL})
	}
	return req, nil
}

// Compare handles POST /compare
func (h *CompareHandler) Compare(c *fiber.Ctx) error {
	// Parameters such as charset are allowed after the media type
	if !c.Is("json") {
		return domain.ErrUnsupportedMediaType
	}

	var body compareRequestBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	req, err := body.toDomain()
	if err != nil {
		return &domain.AppError{
			Code:       domain.ErrValidationFailed.Code,
			Message:    err.Error(),
			StatusCode: domain.ErrValidationFailed.StatusCode,
		}
	}

	resp, err := h.service.Compare(c.UserContext(), req, c.IP())
	if err != nil {
		return err
	}
	middleware.SetComparisonOutcome(c, len(req.People), len(resp.Matches))

	return c.JSON(resp)
}
