package handlers

import (
	"net/http"

	"github.com/cabpool/cabpool-backend/services"
	"github.com/cabpool/cabpool-backend/types"
	"github.com/gin-gonic/gin"
)

// FeedbackHandler handles feedback submission and listing endpoints.
type FeedbackHandler struct {
	feedbackService FeedbackServiceInterface
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(feedbackService FeedbackServiceInterface) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// SubmitFeedback godoc
// @Summary      Submit feedback
// @Description  Submit feedback from the landing page. The comment must be 10 to 1000 characters after trimming.
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        body  body      types.FeedbackCreate  true  "Feedback payload"
// @Success      201   {object}  types.Response{data=types.FeedbackSummary}
// @Failure      400   {object}  types.ErrorResponse
// @Failure      413   {object}  types.ErrorResponse
// @Failure      429   {object}  types.ErrorResponse
// @Failure      500   {object}  types.ErrorResponse
// @Router       /api/feedback [post]
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	var req types.FeedbackCreate
	if !bindJSONOrError(c, &req) {
		return
	}

	summary, err := h.feedbackService.Submit(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, types.Response{
		Success: true,
		Message: services.MsgFeedbackCreated,
		Data:    summary,
	})
}

// ListFeedback godoc
// @Summary      List recent feedback
// @Description  Returns the newest feedback first. limit defaults to 10 and is capped at the configured maximum.
// @Tags         feedback
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of entries"
// @Success      200    {object}  types.ListResponse{data=[]types.Feedback}
// @Failure      400    {object}  types.ErrorResponse
// @Failure      500    {object}  types.ErrorResponse
// @Router       /api/feedback [get]
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	items, err := h.feedbackService.ListRecent(c.Request.Context(), c.Query("limit"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, types.ListResponse{
		Success: true,
		Data:    items,
	})
}
