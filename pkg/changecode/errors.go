package changecode

import "errors"

// ErrInvalidArgument marks a caller contract violation, such as correlating
// sequences of different lengths.
var ErrInvalidArgument = errors.New("invalid argument")
