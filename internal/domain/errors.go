package domain

import "errors"

// ErrComponentNotFound is returned by any data source asked for a
// component it does not hold.
var ErrComponentNotFound = errors.New("component not found")
