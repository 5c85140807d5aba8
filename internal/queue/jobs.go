package queue

import (
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/sidereusnuntius/tabletop/internal/domain"
)

const (
	ImportQueue = "Import"
)

// ImportJob imports one D&D Beyond character sheet. It runs as whoever is logged in when it is processed.
type ImportJob struct {
	ID      string
	Request domain.ImportRequest
}

// Imports are attempted once: the backend call is not idempotent and a failure is reported to the user, who
// may resubmit.
func (j ImportJob) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        ImportQueue,
		MaxAttempts: 1,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data: &backlite.RetainData{
				OnlyFailed: true,
			},
		},
	}
}
