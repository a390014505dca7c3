package rest

import (
	"github.com/gin-gonic/gin"

	apierrors "github.com/jinjernot/wg-sub000/internal/api/shared/errors"
)

func respondError(c *gin.Context, err *apierrors.APIError) {
	c.JSON(err.Status(), err)
}

func respondBadRequest(c *gin.Context, message string) {
	respondError(c, apierrors.NewBadRequestError(message))
}

func respondNotFound(c *gin.Context, message string) {
	respondError(c, apierrors.NewNotFoundError(message))
}

func respondServiceError(c *gin.Context, message string, err error) {
	respondError(c, apierrors.NewServiceError(message, err.Error()))
}
