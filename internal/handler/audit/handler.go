package audit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openclinic/intake-api/internal/handler"
	"github.com/openclinic/intake-api/internal/middleware"
	"github.com/openclinic/intake-api/internal/model"
	"github.com/openclinic/intake-api/internal/service/audit"
)

type Handler struct {
	svc *audit.Service
}

func NewHandler(svc *audit.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes expects r to already carry the Authenticate middleware.
// All audit queries are admin-only.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	logs := r.Group("/audit", middleware.RequireRole(model.RoleAdmin))
	{
		logs.GET("/logs", h.ListLogs)
		logs.GET("/logs/user/:userId", h.ListUserLogs)
		logs.GET("/logs/patient/:patientId", h.ListPatientLogs)
	}
}

func (h *Handler) ListLogs(c *gin.Context) {
	entries, err := h.svc.List(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) ListUserLogs(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user id"))
		return
	}

	entries, err := h.svc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) ListPatientLogs(c *gin.Context) {
	patientID, err := strconv.ParseInt(c.Param("patientId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient id"))
		return
	}

	entries, err := h.svc.ListByPatient(c.Request.Context(), patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
