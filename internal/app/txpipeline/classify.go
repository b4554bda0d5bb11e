package txpipeline

import (
	"errors"
	"net/http"
	"strings"

	"prediction_market/internal/domain/entity"
	"prediction_market/internal/pkg/utils"
)

// Class is the retry category of a failed attempt.
type Class int

const (
	ClassOther Class = iota
	ClassTransient
	ClassUserRejected
)

func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassUserRejected:
		return "user_rejected"
	default:
		return "other"
	}
}

var transientMarkers = []string{
	"circuit breaker",
	"execution prevented",
	"unknown_error",
}

// Classify sorts an attempt error into transient, user-rejected or other.
// Transient errors are wallet or RPC backend hiccups worth another attempt.
func Classify(err error) Class {
	if err == nil {
		return ClassOther
	}
	if errors.Is(err, entity.ErrUserRejected) {
		return ClassUserRejected
	}
	if code, ok := utils.RPCErrorCode(err); ok {
		switch code {
		case utils.CodeUserRejected:
			return ClassUserRejected
		case utils.CodeLimitExceeded:
			return ClassTransient
		}
	}
	if status, ok := utils.HTTPStatus(err); ok {
		switch status {
		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return ClassTransient
		}
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return ClassTransient
		}
	}
	return ClassOther
}
