package controller

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cashbook/cashbook/internal/application/usecase/data"
	"github.com/cashbook/cashbook/internal/integration/entrypoint/dto"
	"github.com/cashbook/cashbook/internal/integration/entrypoint/middleware"
)

// DataController handles the aggregate document endpoints.
type DataController struct {
	getDataUseCase  *data.GetDataUseCase
	syncDataUseCase *data.SyncDataUseCase
}

// NewDataController creates a new data controller instance.
func NewDataController(
	getDataUseCase *data.GetDataUseCase,
	syncDataUseCase *data.SyncDataUseCase,
) *DataController {
	return &DataController{
		getDataUseCase:  getDataUseCase,
		syncDataUseCase: syncDataUseCase,
	}
}

// Get handles GET /api/data requests. A user with no document yet receives a
// freshly seeded one.
func (c *DataController) Get(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Msg: "No token, authorization denied"})
		return
	}

	userData, err := c.getDataUseCase.Execute(ctx.Request.Context(), userID.String())
	if err != nil {
		slog.Error("Failed to fetch user data", "user_id", userID, "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Msg: "Server error"})
		return
	}

	ctx.JSON(http.StatusOK, userData)
}

// Sync handles POST /api/sync requests: a whole-document replace of the
// user's aggregate.
func (c *DataController) Sync(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Msg: "No token, authorization denied"})
		return
	}

	var req dto.SyncRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Msg: "Invalid request body"})
		return
	}

	if err := c.syncDataUseCase.Execute(ctx.Request.Context(), userID.String(), req.ToUserData()); err != nil {
		slog.Error("Failed to sync user data", "user_id", userID, "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Msg: "Server error"})
		return
	}

	ctx.JSON(http.StatusOK, dto.SyncResponse{
		Success: true,
		Message: "Data synced successfully",
	})
}
