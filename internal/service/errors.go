package service

import (
	"errors"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFinished      = errors.New("room already finished")
	ErrNotParticipant    = errors.New("user is not a participant of this room")
	ErrRoomFull          = errors.New("room already has a guest")
	ErrAvatarNotFound    = errors.New("avatar not found")
	ErrAvatarUnavailable = errors.New("avatar cannot battle")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrRewardNotFound    = errors.New("reward not found or already collected")
	ErrSessionNotFound   = errors.New("training session not found")
	ErrConflict          = errors.New("room changed concurrently")
)
