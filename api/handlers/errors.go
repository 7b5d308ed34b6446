package handlers

import (
	"errors"
	"net/http"

	"github.com/yourusername/asset-store-fs/internal/domain"
)

// statusFor maps a lifecycle error to the HTTP status returned to callers
func statusFor(err error) int {
	var fetchErr *domain.RemoteFetchError
	switch {
	case domain.IsClientError(err):
		return http.StatusBadRequest
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
