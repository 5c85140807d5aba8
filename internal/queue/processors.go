package queue

import (
	"context"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/resource"
)

func (q *importQueueImpl) register() {
	importQueue := backlite.NewQueue[ImportJob](q.process())
	q.queues.Register(importQueue)
}

// process runs the import through the mutation executor, so the campaign's character list is invalidated once
// the backend confirms it.
func (q *importQueueImpl) process() func(context.Context, ImportJob) error {
	return func(ctx context.Context, job ImportJob) error {
		log.Debug().Str("job", job.ID).Int64("campaign", job.Request.CampaignID).Msg("importing character")
		q.update(ImportStatus{ID: job.ID, Request: job.Request, State: StateRunning})

		rec, err := q.executor.Execute(ctx, resource.ImportCharacter(q.svc, job.Request))
		if err != nil {
			log.Error().Err(err).Str("job", job.ID).Msg("import failed")
			q.update(ImportStatus{ID: job.ID, Request: job.Request, State: StateFailed, Err: err.Error()})
			return err
		}

		c, _ := rec.Result.(domain.Character)
		q.update(ImportStatus{ID: job.ID, Request: job.Request, State: StateDone, Character: &c})
		return nil
	}
}
