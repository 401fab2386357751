package model

import "errors"

// ErrMalformedForest is returned when a persisted story file cannot be decoded
// into one story tree or an array of story trees.
var ErrMalformedForest = errors.New("malformed story file")
