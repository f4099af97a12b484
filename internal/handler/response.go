package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/openclinic/intake-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError writes err to the client using the error taxonomy's
// status mapping. Internal errors collapse to a generic message.
func RespondError(c *gin.Context, err error) {
	c.Error(err)
	c.JSON(apperrors.StatusCode(err), NewErrorResponse(apperrors.Message(err)))
}
