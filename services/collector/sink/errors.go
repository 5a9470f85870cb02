package sink

import "errors"

// ErrSinkUnavailable signals that the time-series database could not accept the batch.
// The batch is discarded: data that was not collected cannot be recovered.
var ErrSinkUnavailable = errors.New("time-series sink unavailable")
