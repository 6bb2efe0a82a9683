package thread

import (
	"context"

	"github.com/bakape/forum/common"
	"github.com/bakape/forum/config"
	"github.com/bakape/forum/db"
	"github.com/go-playground/log"
	"github.com/prometheus/client_golang/prometheus"
)

var jobSteps = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "forum",
		Subsystem: "jobs",
		Name:      "steps_total",
		Help:      "Completed maintenance job steps",
	},
	[]string{"job"},
)

func init() {
	prometheus.MustRegister(jobSteps)
}

// Job is a paginated maintenance job. Steps returns the number of pages to
// process and Continue processes a single page.
type Job struct {
	Steps    func(context.Context) (int, error)
	Continue func(context.Context, int) error
}

// Jobs returns all maintenance jobs by name
func (s *Service) Jobs() map[string]Job {
	return map[string]Job{
		"recount":      {RecountReplies, RecountRepliesContinue},
		"participants": {RebuildParticipants, RebuildParticipantsContinue},
		"process": {
			func(ctx context.Context) (int, error) {
				return s.ProcessMessages(ctx, false)
			},
			func(ctx context.Context, step int) error {
				return s.ProcessMessagesContinue(ctx, step, false)
			},
		},
		"reprocess": {s.ReprocessMessages, s.ReprocessMessagesContinue},
	}
}

// RunJob runs all steps of a job in order
func RunJob(ctx context.Context, name string, j Job) (err error) {
	steps, err := j.Steps(ctx)
	if err != nil {
		return
	}
	for i := 0; i < steps; i++ {
		if err = ctx.Err(); err != nil {
			return
		}
		err = j.Continue(ctx, i)
		if err != nil {
			return
		}
		jobSteps.WithLabelValues(name).Inc()
		if !common.IsTest {
			log.WithFields(log.F("job", name)).Infof("step %d of %d", i+1, steps)
		}
	}
	return
}

// Number of pages of size perPage needed for total items
func stepCount(total uint64, perPage int) int {
	if perPage <= 0 {
		perPage = 1
	}
	p := uint64(perPage)
	return int((total + p - 1) / p)
}

// RecountReplies returns the number of steps needed to recount the replies of
// all topics
func RecountReplies(ctx context.Context) (int, error) {
	n, err := db.CountTopics(ctx)
	return stepCount(n, config.Get().TopicsPerPage), err
}

// RecountRepliesContinue recounts the reply counts and last replies of one
// page of topics
func RecountRepliesContinue(ctx context.Context, step int) error {
	return forEachTopic(ctx, step, db.RecountTopic)
}

// RebuildParticipants returns the number of steps needed to rebuild the
// participants of all topics
func RebuildParticipants(ctx context.Context) (int, error) {
	return RecountReplies(ctx)
}

// RebuildParticipantsContinue rebuilds the participants of one page of topics
func RebuildParticipantsContinue(ctx context.Context, step int) error {
	return forEachTopic(ctx, step, db.RebuildTopicParticipants)
}

// Run fn on each topic of a page. Topics are paged from newest to oldest.
func forEachTopic(ctx context.Context, step int,
	fn func(context.Context, uint64) error,
) (err error) {
	perPage := uint64(max(config.Get().TopicsPerPage, 1))
	ids, err := db.GetTopicIDs(ctx, uint64(step)*perPage, perPage)
	if err != nil {
		return
	}
	for _, id := range ids {
		err = fn(ctx, id)
		if err != nil {
			return
		}
	}
	return
}

// ProcessMessages returns the number of steps needed to run the processing
// pipeline over stored messages. Unless force is set, only unprocessed
// messages are included.
func (s *Service) ProcessMessages(ctx context.Context, force bool) (int, error) {
	n, err := db.CountMessages(ctx, force)
	return stepCount(n, config.Get().MessagesPerPage), err
}

// ProcessMessagesContinue reruns the processing pipeline over the original
// bodies of one page of messages. Messages failing processing keep their
// previous rendering and are marked processed.
func (s *Service) ProcessMessagesContinue(ctx context.Context, step int,
	force bool,
) (err error) {
	perPage := uint64(max(config.Get().MessagesPerPage, 1))

	// Processed messages drop out of the unprocessed set, so the next batch is
	// always at the start
	var offset uint64
	if force {
		offset = uint64(step) * perPage
	}
	msgs, err := db.GetMessagesForProcessing(ctx, force, offset, perPage)
	if err != nil {
		return
	}

	p, err := s.processor(ctx, "")
	if err != nil {
		return
	}
	for _, m := range msgs {
		p.Actor = m.PostedByID
		pm, err := p.Process(ctx, m.OriginalBody)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			// Old messages may no longer pass validation
			if !common.CanIgnoreClientError(err) {
				log.WithFields(log.F("message", m.ID)).Warnf("processing: %s", err)
			}
			if err := db.MarkProcessed(ctx, m.ID); err != nil {
				return err
			}
			continue
		}
		err = db.UpdateMessageBody(ctx, m.ID, pm.MessageBody)
		if err != nil {
			return err
		}
	}
	return
}

// ReprocessMessages returns the number of steps needed to rerun the
// processing pipeline over all messages
func (s *Service) ReprocessMessages(ctx context.Context) (int, error) {
	return s.ProcessMessages(ctx, true)
}

// ReprocessMessagesContinue reruns the processing pipeline over one page of
// all messages
func (s *Service) ReprocessMessagesContinue(ctx context.Context, step int,
) error {
	return s.ProcessMessagesContinue(ctx, step, true)
}

// PageNumber returns the zero-based page of a message inside its topic
func PageNumber(ctx context.Context, id uint64) (page int, err error) {
	m, err := db.GetMessage(ctx, id)
	if err != nil {
		return
	}
	i, err := db.MessageIndex(ctx, m.TopicID(), m.ID)
	if err != nil {
		return
	}
	return int(i) / max(config.Get().MessagesPerPage, 1), nil
}
