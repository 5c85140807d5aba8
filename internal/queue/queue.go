package queue

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/mutation"
	"github.com/sidereusnuntius/tabletop/internal/service"
	"github.com/sidereusnuntius/tabletop/internal/validate"
)

type Importer interface {
	// Enqueue validates the request and schedules the import, returning the job id.
	Enqueue(ctx context.Context, req domain.ImportRequest) (string, error)
	Status(id string) (ImportStatus, bool)
	// Subscribe registers f to be called whenever a job changes state.
	Subscribe(f func(ImportStatus)) (unsubscribe func())
}

type importQueueImpl struct {
	queues   *backlite.Client
	executor *mutation.Executor
	svc      service.Service

	mu        sync.Mutex
	statuses  map[string]ImportStatus
	listeners map[int]func(ImportStatus)
	nextID    int
}

// New registers the import queue on blClient and starts processing. Processing stops when ctx is done.
func New(ctx context.Context, blClient *backlite.Client, executor *mutation.Executor, svc service.Service) Importer {
	q := &importQueueImpl{
		queues:    blClient,
		executor:  executor,
		svc:       svc,
		statuses:  map[string]ImportStatus{},
		listeners: map[int]func(ImportStatus){},
	}
	q.register()
	q.queues.Start(ctx)
	log.Info().Msg("started import queue")
	return q
}

func (q *importQueueImpl) Enqueue(_ context.Context, req domain.ImportRequest) (string, error) {
	if err := validate.Struct(req); err != nil {
		return "", err
	}

	job := ImportJob{
		ID:      uuid.NewString(),
		Request: req,
	}
	q.update(ImportStatus{ID: job.ID, Request: req, State: StateQueued})

	log.Debug().Str("job", job.ID).Str("url", req.CharacterURL).Msg("enqueuing import")
	if _, err := q.queues.Add(job).Save(); err != nil {
		q.update(ImportStatus{ID: job.ID, Request: req, State: StateFailed, Err: err.Error()})
		return "", err
	}
	return job.ID, nil
}
