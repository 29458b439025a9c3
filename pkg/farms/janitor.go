package farms

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/farmhand-io/farmhand/pkg/observability"
)

const janitorRunTimeout = 2 * time.Minute

// InvitationCleaner is the slice of Service the janitor needs
type InvitationCleaner interface {
	CleanupExpiredInvitations(ctx context.Context) (int64, error)
}

// Janitor periodically deletes expired invitation rows. Expired rows
// are already rejected on every read path, so the janitor is purely
// housekeeping and safe to leave disabled.
type Janitor struct {
	cron    *cron.Cron
	cleaner InvitationCleaner
	logger  *observability.Logger
}

// NewJanitor creates a janitor running on the given cron schedule
// (standard 5-field syntax, e.g. "0 * * * *" for hourly).
func NewJanitor(cleaner InvitationCleaner, logger *observability.Logger, schedule string) (*Janitor, error) {
	j := &Janitor{
		cron:    cron.New(),
		cleaner: cleaner,
		logger:  logger,
	}

	if _, err := j.cron.AddFunc(schedule, j.run); err != nil {
		return nil, fmt.Errorf("invalid janitor schedule %q: %w", schedule, err)
	}

	return j, nil
}

// Start begins scheduled runs
func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop halts scheduling and waits for an in-flight run to finish
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

func (j *Janitor) run() {
	ctx, cancel := context.WithTimeout(context.Background(), janitorRunTimeout)
	defer cancel()

	removed, err := j.cleaner.CleanupExpiredInvitations(ctx)
	if err != nil {
		j.logger.WithError(err).Error("Invitation cleanup failed")
		return
	}
	if removed > 0 {
		j.logger.WithField("removed", removed).Info("Expired invitations cleaned up")
	}
}
