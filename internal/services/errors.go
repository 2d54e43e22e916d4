// Package services holds the query façade over acquisition, the snapshot and
// the archive. This file centralizes service-level error values so handlers
// can map them to HTTP results consistently.
package services

import (
	"errors"

	"github.com/tbourn/ai-tracker/internal/domain"
)

var (
	// ErrInvalidDays is returned when a day range is not a positive number.
	ErrInvalidDays = errors.New("days must be a positive number")

	// ErrToolNotFound aliases the catalog error so callers need one import.
	ErrToolNotFound = domain.ErrToolNotFound

	// ErrNoArchive is returned when a tool has nothing archived in the range.
	ErrNoArchive = errors.New("no archived posts for tool")
)
