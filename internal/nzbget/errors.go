package nzbget

import (
	"errors"
	"fmt"
)

var (
	ErrMissingResult = errors.New("nzbget response has no result")
	ErrMissingField  = errors.New("nzbget status field missing")
)

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("nzbget http %d: %s", e.StatusCode, e.Body)
}

// RPCError is the error object NZBGet places in a JSON-RPC response.
type RPCError struct {
	Name    string `json:"name"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("nzbget rpc error %d: %s", e.Code, e.Message)
}
