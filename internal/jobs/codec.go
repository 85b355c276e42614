package jobs

import (
	"encoding/json"
	"fmt"
)

// Encode validates p and marshals it into a task body.
func Encode[P Payload](p P) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}
	return b, nil
}

// Decode unmarshals a task body into P and validates the result.
func Decode[P Payload](raw []byte) (P, error) {
	var zero P
	if len(raw) == 0 {
		return zero, fmt.Errorf("%w: empty body", ErrInvalidJobPayload)
	}

	var p P
	if err := json.Unmarshal(raw, &p); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}
	if err := p.Validate(); err != nil {
		return zero, err
	}
	return p, nil
}
