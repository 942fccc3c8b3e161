package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// DeliveryError is a failed delivery attempt carrying the remote status
// code when one was received.
type DeliveryError struct {
	ChannelType string
	StatusCode  int
	Message     string
}

func (e *DeliveryError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s delivery failed: HTTP %d: %s", e.ChannelType, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s delivery failed: %s", e.ChannelType, e.Message)
}

// IsTransient reports whether a delivery error is worth retrying:
// timeouts, rate limiting and server-side failures are; credential and
// client errors are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// A DeliveryError means the remote answered: only rate limiting and
	// server-side failures are worth retrying.
	var deliveryErr *DeliveryError
	if errors.As(err, &deliveryErr) {
		return deliveryErr.StatusCode == http.StatusTooManyRequests || deliveryErr.StatusCode >= 500
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return false
}
