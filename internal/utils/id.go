package utils

import (
	"github.com/google/uuid"

	"github.com/vovakirdan/roomrelay/internal/core"
)

// NewConnID returns a random identifier for a new connection.
func NewConnID() core.ConnID {
	return core.ConnID(uuid.NewString())
}
