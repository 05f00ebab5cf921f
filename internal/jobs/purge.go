// Package jobs runs the gateway's periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PurgeFunc deletes expired rows and reports how many were removed.
type PurgeFunc func(ctx context.Context) (int64, error)

// purgeTimeout bounds one purge run.
const purgeTimeout = 30 * time.Second

// StartIdempotencyPurge schedules purge on spec (standard five-field or
// descriptor syntax such as "@hourly") and starts the scheduler. Overlapping
// runs are skipped. Stop the returned scheduler on shutdown.
func StartIdempotencyPurge(spec string, purge PurgeFunc) (*cron.Cron, error) {
	logger := cronLogger{zl: log.Logger.With().Str("component", "cron").Logger()}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(spec, func() { runPurge(context.Background(), purge) }); err != nil {
		return nil, err
	}
	c.Start()
	log.Info().Str("spec", spec).Msg("idempotency purge scheduled")
	return c, nil
}

// cronLogger routes cron's own messages (panics, skipped runs) to zerolog.
// Info is scheduler chatter and goes to debug.
type cronLogger struct{ zl zerolog.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.zl.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.zl.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

func runPurge(ctx context.Context, purge PurgeFunc) {
	ctx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()

	n, err := purge(ctx)
	if err != nil {
		log.Error().Err(err).Msg("idempotency purge failed")
		return
	}
	if n > 0 {
		log.Info().Int64("deleted", n).Msg("idempotency purge")
	}
}
