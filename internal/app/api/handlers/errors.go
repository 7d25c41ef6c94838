package handlers

import (
	"errors"
	"net/http"

	"github.com/fatflowers/ispbill/internal/app/service/billing"
	"github.com/fatflowers/ispbill/pkg/response"

	"github.com/gin-gonic/gin"
)

// codeFor maps service errors to envelope codes.
func codeFor(err error) response.APIResponseCode {
	switch {
	case errors.Is(err, billing.ErrInvalidArgument):
		return response.APIResponseCodeBadRequest
	case errors.Is(err, billing.ErrNotFound):
		return response.APIResponseCodeNotFound
	default:
		return response.APIResponseCodeError
	}
}

// writeError always answers 200; the envelope code carries the failure.
// Unexpected errors are attached to the context for the access log.
func writeError(c *gin.Context, err error) {
	code := codeFor(err)
	if code == response.APIResponseCodeError {
		_ = c.Error(err)
	}
	c.JSON(http.StatusOK, response.ErrorMsg(code, err))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, msg))
}
