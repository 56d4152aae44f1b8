package models

import (
	"time"

	"github.com/google/uuid"
)

// Song is a music catalog entry. SpotifyTrackID is opaque metadata filled in by
// the client's Spotify lookup; the backend never calls Spotify.
type Song struct {
	ID             uuid.UUID `json:"id"`
	AreaID         uuid.UUID `json:"area_id"`
	Title          string    `json:"title"`
	Artist         string    `json:"artist,omitempty"`
	Tone           string    `json:"tone,omitempty"`
	SpotifyTrackID string    `json:"spotify_track_id,omitempty"`
	CreatedBy      uuid.UUID `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
