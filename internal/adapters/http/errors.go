package http

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/verse-recommender/internal/adapters/http/dto"
)

// AbortWithErrorCode aborts the chain with a failure envelope for an
// adapter-level error that does not come from the domain, e.g. an unknown route.
// Domain errors go through dto.HandleError instead.
func AbortWithErrorCode(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.HTTPStatusFromCode(code), dto.NewErrorResponse(message).WithTraceID(dto.GetTraceID(c)))
}
