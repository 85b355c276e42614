package jobs

import "errors"

var ErrInvalidJobPayload = errors.New("invalid job payload")
