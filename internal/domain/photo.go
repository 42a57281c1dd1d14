package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Photo
var (
	ErrEmptyPhotoID  = errors.New("photo ID cannot be empty")
	ErrEmptyPhotoURI = errors.New("photo URI cannot be empty")
)

// Photo is a single picture in the user's progress gallery.
// The URI is an opaque handle to the image data (file path, content URI,
// blob reference) and is never interpreted here.
type Photo struct {
	ID        string    `json:"id"`
	URI       string    `json:"uri"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewPhoto creates a Photo for the given URI with a freshly generated ID.
// Returns an error if the URI is empty.
func NewPhoto(uri string, createdAt time.Time) (*Photo, error) {
	photo := &Photo{
		ID:        uuid.NewString(),
		URI:       uri,
		CreatedAt: createdAt.UTC(),
	}

	if err := photo.Validate(); err != nil {
		return nil, err
	}

	return photo, nil
}

// Validate checks if the Photo has valid data.
func (p *Photo) Validate() error {
	if p.ID == "" {
		return ErrEmptyPhotoID
	}

	if p.URI == "" {
		return ErrEmptyPhotoURI
	}

	return nil
}
