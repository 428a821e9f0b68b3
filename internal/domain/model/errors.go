package model

import "errors"

// ErrMalformedReview marks a review payload that does not have the expected
// shape. Provider adapters and the gateway client wrap it with the cause.
var ErrMalformedReview = errors.New("review provider returned an invalid review")

// ErrCodeTooLarge marks code rejected for exceeding the gateway's size limit.
// The gateway client reports a 413 response as this error.
var ErrCodeTooLarge = errors.New("code exceeds maximum size")
