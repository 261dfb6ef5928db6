package service

import "errors"

var (
	ErrChatNotFound = errors.New("chat not found")
	ErrEmptyTurns   = errors.New("at least one message is required")
	ErrInvalidRole  = errors.New("message role must be user or assistant")
	ErrStreamFailed = errors.New("completion stream failed")
	ErrClientGone   = errors.New("client disconnected")
)
