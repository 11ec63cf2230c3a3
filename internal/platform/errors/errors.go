package apperrors

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("not found")
	ErrNoActiveEpisode      = errors.New("no active episode")
	ErrEpisodeFinished      = errors.New("episode already finished")
	ErrActiveEpisodeExists  = errors.New("active episode already exists")
	ErrNoDysrhythmiaSession = errors.New("no active dysrhythmia session")
)
