package resilience

import (
	"errors"
	"net"

	"github.com/aws/smithy-go"
)

// throttleCodes are AWS API error codes that mean "slow down" rather than
// "something broke"; they retry with the longer throttle backoff.
var throttleCodes = map[string]struct{}{
	"ThrottlingException":                    {},
	"Throttling":                             {},
	"TooManyRequestsException":               {},
	"RequestLimitExceeded":                   {},
	"ServiceQuotaExceededException":          {},
	"ProvisionedThroughputExceededException": {},
	"LimitExceededException":                 {},
}

// IsThrottle reports whether the error is a rate-limit/throttling response.
func IsThrottle(err error) bool {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		_, ok := throttleCodes[ae.ErrorCode()]
		return ok
	}
	return false
}

// IsTransient reports whether the error is safe to retry: throttling,
// server-side API faults, or network timeouts.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if IsThrottle(err) {
		return true
	}
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorFault() == smithy.FaultServer
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
