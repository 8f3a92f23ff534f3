package leads

import "errors"

var (
	ErrLeadNotFound   = errors.New("leads: lead not found")
	ErrInvalidName    = errors.New("leads: name is required")
	ErrMissingContact = errors.New("leads: email or phone is required")
	ErrInvalidStatus  = errors.New("leads: unknown status")
)
