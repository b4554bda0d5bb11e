package restapi

import (
	"errors"
	"net/http"

	"prediction_market/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// statusFor maps domain errors onto HTTP status codes. Pipeline failures are
// mapped by their kind so that the wrapped cause does not shadow it.
func statusFor(err error) int {
	var txErr *entity.TxError
	if errors.As(err, &txErr) {
		err = txErr.Kind
	}

	switch {
	case errors.Is(err, entity.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, entity.ErrConfirmationNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrUserRejected), errors.Is(err, entity.ErrUserCancelled):
		return http.StatusConflict
	case errors.Is(err, entity.ErrNetworkMismatch), errors.Is(err, entity.ErrWalletNotConnected):
		return http.StatusPreconditionFailed
	case errors.Is(err, entity.ErrWalletUnavailable), errors.Is(err, entity.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, entity.ErrTransactionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()

	var invalid *entity.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		msg = invalid.Msg
	case status == http.StatusInternalServerError:
		msg = "Internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
