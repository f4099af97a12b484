package patient

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/openclinic/intake-api/internal/handler"
	"github.com/openclinic/intake-api/internal/middleware"
	"github.com/openclinic/intake-api/internal/model"
	"github.com/openclinic/intake-api/internal/service/patient"
)

type Handler struct {
	svc *patient.Service
}

func NewHandler(svc *patient.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes expects r to already carry the Authenticate middleware.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("/create", middleware.RequireRole(model.RoleClinician), h.Create)
		patients.GET("/data", h.List)
	}
}

func (h *Handler) Create(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
		return
	}

	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(bindErrorMessage(err)))
		return
	}

	if _, err := h.svc.Create(c.Request.Context(), &req, identity); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Patient created"})
}

func (h *Handler) List(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
		return
	}

	patients, err := h.svc.List(c.Request.Context(), identity)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, patients)
}

func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "ssn" {
				return "invalid SSN format, use XXX-XX-XXXX"
			}
		}
	}
	return "missing patient fields"
}
