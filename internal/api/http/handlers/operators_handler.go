package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/byZeet/centralita-neron/internal/api/dto"
	"github.com/byZeet/centralita-neron/internal/domain"
	"github.com/byZeet/centralita-neron/internal/service"
	apperrors "github.com/byZeet/centralita-neron/pkg/util/errorutil"
)

// OperatorsHandler manages the operator directory, login, and presence.
type OperatorsHandler struct {
	service *service.OperatorService
}

// NewOperatorsHandler constructs handler.
func NewOperatorsHandler(operatorService *service.OperatorService) *OperatorsHandler {
	return &OperatorsHandler{service: operatorService}
}

// Login POST /login.
func (h *OperatorsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	operator, token, err := h.service.Login(c.Context(), req.Name, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{Token: token, Operator: operatorResponse(operator)})
}

// ListOperators GET /operators.
func (h *OperatorsHandler) ListOperators(c *fiber.Ctx) error {
	operators, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.OperatorResponse, 0, len(operators))
	for i := range operators {
		items = append(items, operatorResponse(&operators[i]))
	}
	return c.JSON(fiber.Map{"operators": items})
}

// CreateOperator POST /operators.
func (h *OperatorsHandler) CreateOperator(c *fiber.Ctx) error {
	var req dto.OperatorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	password := ""
	if req.Password != nil {
		password = *req.Password
	}
	operator, err := h.service.Create(c.Context(), service.OperatorCreateInput{
		Name:       req.Name,
		Password:   password,
		Role:       domain.OperatorRole(req.Role),
		Department: req.Department,
		Extension:  req.Extension,
		Shift:      shiftFromString(req.Shift),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(operatorResponse(operator))
}

// UpdateOperator PUT /operators/:id.
func (h *OperatorsHandler) UpdateOperator(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return apperrors.NewValidationError("invalid operator id", nil)
	}
	var req dto.OperatorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	operator, err := h.service.Update(c.Context(), id, service.OperatorUpdateInput{
		Name:       req.Name,
		Password:   req.Password,
		Role:       domain.OperatorRole(req.Role),
		Department: req.Department,
		Extension:  req.Extension,
		Shift:      shiftFromString(req.Shift),
	})
	if err != nil {
		return err
	}
	return c.JSON(operatorResponse(operator))
}

// DeleteOperator DELETE /operators/:id.
func (h *OperatorsHandler) DeleteOperator(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return apperrors.NewValidationError("invalid operator id", nil)
	}
	if err := h.service.Delete(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// UpdateStatus POST /status. Shift handling distinguishes an explicit null
// (clear) from an absent key (leave untouched), so the raw body is inspected
// for key presence.
func (h *OperatorsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	_, shiftPresent := raw["shift"]

	input := service.PresenceInput{
		SetShift: shiftPresent,
		Shift:    shiftFromString(req.Shift),
	}
	if req.Status != nil {
		status := domain.OperatorStatus(*req.Status)
		input.Status = &status
	}
	if err := h.service.UpdatePresence(c.Context(), req.ID, input); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func shiftFromString(raw *string) *domain.Shift {
	if raw == nil || *raw == "" {
		return nil
	}
	shift := domain.Shift(*raw)
	return &shift
}

func operatorResponse(op *domain.Operator) dto.OperatorResponse {
	return dto.OperatorResponse{
		ID:         op.ID,
		Name:       op.Name,
		Role:       op.Role,
		Department: op.Department,
		Extension:  op.Extension,
		Shift:      op.Shift,
		Status:     op.Status,
		LastSeen:   op.LastSeen,
	}
}
