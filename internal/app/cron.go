package app

import (
	"context"
	"time"

	"github.com/studykit/core/internal/modules/processing/extract"
	pkgcron "github.com/studykit/core/internal/pkg/cron"
)

const sweepStaleJobName = "sweep_stale_uploads"

// staleUploadAge is how old a leftover work dir must be before the sweeper
// removes it. Extraction cleans up after itself; the sweeper only catches
// dirs orphaned by crashes.
const staleUploadAge = 24 * time.Hour

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, extractor *extract.Service) {
	sched.Register(pkgcron.Job{
		Name:     sweepStaleJobName,
		Interval: time.Hour,
		Fn: func(ctx context.Context) error {
			return extractor.SweepStale(staleUploadAge)
		},
	})
}
