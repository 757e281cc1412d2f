package service

import "errors"

var (
	ErrRoomNotFound         = errors.New("voice room not found")
	ErrRoomNotTracked       = errors.New("channel is not a tracked auto room")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInternalServer       = errors.New("internal server error")
)
