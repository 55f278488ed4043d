package endpoints

import (
	"errors"
)

const (
	API_SUCCESS = iota + 303000 // 303000
	API_FAILURE                 // 303001 - Generic API failure
)

const (
	GAUGES_NOT_AVAILABLE = iota + 101 // 101 - Exporter was started without a gauge store
	METHOD_NOT_ALLOWED                // 102 - Only GET is served
)

var (
	ErrGaugesNotAvailable = errors.New("gauge store is not configured")
	ErrMethodNotAllowed   = errors.New("method not allowed, only GET requests are supported")
)

func GetErrorCode(err error) int {
	if err == nil {
		return API_SUCCESS
	}

	switch {
	case errors.Is(err, ErrGaugesNotAvailable):
		return GAUGES_NOT_AVAILABLE
	case errors.Is(err, ErrMethodNotAllowed):
		return METHOD_NOT_ALLOWED
	default:
		return API_FAILURE
	}
}
