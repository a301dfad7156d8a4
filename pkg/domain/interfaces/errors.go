package interfaces

import "errors"

// ErrRecordNotFound is returned by any repository backend when the
// requested record does not exist.
var ErrRecordNotFound = errors.New("record not found")
