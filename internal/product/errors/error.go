// Package errors provides custom error types for product-related operations.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")

// ErrStoreUnavailable is returned by every store operation when the service runs without a database.
var ErrStoreUnavailable = errors.New("product store unavailable")
