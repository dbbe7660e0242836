package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harvestlink/checkoutapi/pkg/errors"
)

// writeError maps the error taxonomy to HTTP responses. Validation and
// blocked submissions are the caller's problem; network failures and server
// rejections surface as bad gateway so the client can offer a retry.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var blocked *errors.ErrSubmissionBlocked
	if stderrors.As(err, &blocked) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"reason":  blocked.Reason,
			"error":   blocked.Message,
		})
		return
	}

	var validation *errors.ErrValidation
	if stderrors.As(err, &validation) {
		resp := gin.H{"success": false, "error": validation.Error()}
		if len(validation.Fields) > 0 {
			resp["fields"] = validation.Fields
		}
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	var notFound *errors.ErrNotFound
	if stderrors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": notFound.Error()})
		return
	}

	var transition *errors.ErrInvalidStateTransition
	if stderrors.As(err, &transition) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": transition.Error()})
		return
	}

	var rejection *errors.ErrServerRejection
	if stderrors.As(err, &rejection) {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": rejection.Message})
		return
	}

	var network *errors.ErrNetwork
	if stderrors.As(err, &network) {
		logger.Error("store backend unreachable", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   "something went wrong, please try again",
		})
		return
	}

	logger.Error("unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
}
