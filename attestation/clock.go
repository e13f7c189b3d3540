package attestation

import (
	"time"

	"github.com/google/uuid"
)

func defaultNow() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func defaultRunID() string {
	return uuid.NewString()
}
