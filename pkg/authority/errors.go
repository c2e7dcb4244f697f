package authority

import "errors"

var (
	ErrInvalidUserID    = errors.New("authority.invalid_user_id")
	ErrInvalidBaseURL   = errors.New("authority.invalid_base_url")
	ErrRequestFailed    = errors.New("authority.request_failed")
	ErrUnexpectedStatus = errors.New("authority.unexpected_status")
	ErrUserNotFound     = errors.New("authority.user_not_found")
	ErrMalformedPayload = errors.New("authority.malformed_payload")
)
