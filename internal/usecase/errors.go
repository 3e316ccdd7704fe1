package usecase

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInternal           = errors.New("internal error")
	ErrCurriculumNotFound = errors.New("curriculum not found")
	ErrAnalysisInProgress = errors.New("analysis already running")
	ErrSnapshotNotFound   = errors.New("snapshot not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
