package dropbox

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/rebelsai/docusight/internal/core/domain"
	"github.com/rebelsai/docusight/internal/infrastructure/resilience"
)

func classifyDropboxError(err error) resilience.Classification {
	if err == nil {
		return resilience.Classification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// Timeouts are retried by the caller's next attempt, not recorded
		// against the breaker.
		return resilience.Classification{Retryable: true, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.Classification{Retryable: true, RecordFailure: true}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			// Revoked or expired token. Never retried here; the factory
			// owns the refresh path.
			return resilience.Classification{Retryable: false, RecordFailure: false}
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return resilience.Classification{Retryable: true, RecordFailure: true}
		default:
			return resilience.Classification{Retryable: false, RecordFailure: false}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.Classification{Retryable: true, RecordFailure: true}
	}
	return resilience.Classification{Retryable: false, RecordFailure: true}
}

// wrapDropboxError maps transport failures onto the domain taxonomy:
// auth rejections become ErrAuthentication, everything else the given
// operation kind (ErrUpload for uploads, ErrTemporary for downloads).
func wrapDropboxError(operation string, kind error, err error) error {
	if err == nil {
		return nil
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden {
			return domain.WrapError(domain.ErrAuthentication, operation, err)
		}
	}
	return domain.WrapError(kind, operation, err)
}
