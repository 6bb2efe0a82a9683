package thread

import (
	"context"

	"github.com/bakape/forum/common"
	"github.com/bakape/forum/config"
	"github.com/go-playground/log"
	"github.com/robfig/cron/v3"
)

// StartUpkeep schedules processing of unprocessed messages and the repair
// jobs according to the instance configuration. Stop the returned scheduler to
// cancel upkeep.
func (s *Service) StartUpkeep(ctx context.Context) (c *cron.Cron, err error) {
	jobs := s.Jobs()
	c = cron.New()
	schedules := [...]struct {
		spec string
		jobs []string
	}{
		{config.Server.ProcessSchedule, []string{"process"}},
		{config.Server.RepairSchedule, []string{"recount", "participants"}},
	}
	for _, sc := range schedules {
		names := sc.jobs
		_, err = c.AddFunc(sc.spec, func() {
			for _, n := range names {
				err := RunJob(ctx, n, jobs[n])
				if !common.CanIgnoreClientError(err) {
					log.WithFields(log.F("job", n)).Errorf("upkeep: %s", err)
				}
			}
		})
		if err != nil {
			return nil, err
		}
	}
	c.Start()
	return
}
