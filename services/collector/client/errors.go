package client

import "errors"

// ErrConnectivity signals that the BMS endpoint is unreachable, timed out or answered
// with an unexpected status code. It aborts the current poll cycle only.
var ErrConnectivity = errors.New("bms endpoint unreachable")

// ErrAuth signals that the BMS rejected the configured bearer token
var ErrAuth = errors.New("bms rejected credentials")
