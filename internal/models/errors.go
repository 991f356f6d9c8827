package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("record not found")
	ErrPredictionsUnavailable = errors.New("predictions unavailable")
	ErrConflict               = errors.New("conflict")

	ErrAlreadySettled    = fmt.Errorf("%w: purchase already settled", ErrInvalidInput)
	ErrDuplicatePurchase = fmt.Errorf("%w: recommendation already purchased", ErrConflict)
)
