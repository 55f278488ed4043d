package scheduler

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/robfig/cron/v3"

	"aqi-query/internal/domain"
	"aqi-query/internal/report"
	"aqi-query/internal/util"
)

const DefaultInterval = domain.DefaultCollectInterval

// routedParameters are the readings a collection cycle forwards to the gauge
// store. PM2.5 is tracked by the store but not routed here.
var routedParameters = map[string]bool{
	domain.ParameterO3:   true,
	domain.ParameterPM10: true,
}

type Scheduler struct {
	fetcher  domain.ObservationFetcher
	store    domain.GaugeStore
	out      io.Writer
	logger   *util.Logger
	interval time.Duration
	location *time.Location

	cron    *cron.Cron
	entryID cron.EntryID
}

func New(fetcher domain.ObservationFetcher, store domain.GaugeStore, out io.Writer, logger *util.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	cronLogger := util.CronLogger{Logger: logger}
	return &Scheduler{
		fetcher:  fetcher,
		store:    store,
		out:      out,
		logger:   logger,
		interval: interval,
		location: time.Local,
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
	}
}

// RunOnce fetches and prints a single batch without touching the gauges.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	observations, err := s.fetcher.FetchObservations(ctx)
	if err != nil {
		return err
	}
	report.PrintTable(s.out, observations)
	return nil
}

// Cycle fetches a batch, prints it and updates the gauges from it.
func (s *Scheduler) Cycle(ctx context.Context) error {
	observations, err := s.fetcher.FetchObservations(ctx)
	if err != nil {
		return fmt.Errorf("collection cycle: %w", err)
	}
	report.PrintTable(s.out, observations)

	for _, obs := range observations {
		if !routedParameters[obs.ParameterName] {
			continue
		}
		s.store.Update(obs.ParameterName, obs.AQI)

		observedAt, err := obs.ObservedAt(s.location)
		if err != nil {
			s.logger.LogEvent(util.LOG_LEVEL_WARN, "Updated", obs.ParameterName, "gauge from reading with unparsable date:", err)
			continue
		}
		s.logger.LogEvent(util.LOG_LEVEL_DEBUG, "Updated", obs.ParameterName, "gauge to", obs.AQI, "observed at", observedAt.Format(time.RFC3339))
	}
	return nil
}

// Start schedules Cycle every interval. The first cycle runs one interval
// after Start, not immediately.
func (s *Scheduler) Start() {
	if s.entryID != 0 {
		return
	}
	s.entryID = s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(s.tick))
	s.cron.Start()
	s.logger.LogEvent(util.LOG_LEVEL_INFO, "Collection scheduled every", s.interval)
}

// Stop halts the schedule. The returned context is done once a running cycle finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// NextRun reports when the next collection cycle fires, or the zero time if
// the scheduler has not been started.
func (s *Scheduler) NextRun() time.Time {
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	if err := s.Cycle(ctx); err != nil {
		s.logger.LogEvent(util.LOG_LEVEL_ERROR, "Request error:", err)
	}
}
