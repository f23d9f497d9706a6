package handlers

import (
	"net/http"

	"github.com/cabpool/cabpool-backend/services"
	"github.com/cabpool/cabpool-backend/types"
	"github.com/gin-gonic/gin"
)

// RegistrationHandler handles interest registrations from the landing page.
type RegistrationHandler struct {
	registrationService RegistrationServiceInterface
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(registrationService RegistrationServiceInterface) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

// Register godoc
// @Summary      Register interest
// @Description  Stores a ride-sharing interest registration. Emails are unique, case-insensitively.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        body  body      types.RegistrationCreate  true  "Registration payload"
// @Success      201   {object}  types.Response{data=types.RegistrationSummary}
// @Failure      400   {object}  types.ErrorResponse  "Missing field, invalid email or malformed body"
// @Failure      409   {object}  types.ErrorResponse  "Email already registered"
// @Failure      413   {object}  types.ErrorResponse
// @Failure      429   {object}  types.ErrorResponse
// @Failure      500   {object}  types.ErrorResponse
// @Router       /api/register [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req types.RegistrationCreate
	if !bindJSONOrError(c, &req) {
		return
	}

	summary, err := h.registrationService.Register(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, types.Response{
		Success: true,
		Message: services.MsgRegistrationCreated,
		Data:    summary,
	})
}
