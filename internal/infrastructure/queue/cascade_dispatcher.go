package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ledgerly/budget-api/internal/core/ports"
	"github.com/ledgerly/budget-api/internal/pkg/metrics"
)

const (
	defaultWorkers       = 4
	defaultSweepInterval = time.Minute
	channelBuffer        = 256
)

// CascadeDispatcher finishes journaled budget cascades in the background.
// Jobs are sharded by budget id so one budget is never processed by two
// workers at once.
type CascadeDispatcher struct {
	workers []chan ports.CascadeJob
	wg      sync.WaitGroup
	log     zerolog.Logger
}

// NewCascadeDispatcher creates a CascadeDispatcher with numWorkers sharded
// workers. If numWorkers <= 0, defaultWorkers is used.
func NewCascadeDispatcher(numWorkers int, log zerolog.Logger) *CascadeDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &CascadeDispatcher{
		workers: make([]chan ports.CascadeJob, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.CascadeJob, channelBuffer)
	}
	return d
}

// Start launches the workers and the journal sweeper. Everything journaled
// is swept once immediately and then every sweepInterval. All goroutines
// stop when ctx is cancelled.
func (d *CascadeDispatcher) Start(ctx context.Context, processor ports.CascadeProcessor, journal ports.CascadeJournal, sweepInterval time.Duration) {
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}
	d.wg.Add(len(d.workers) + 1)
	for i, ch := range d.workers {
		go func(i int, ch chan ports.CascadeJob) {
			defer d.wg.Done()
			d.runWorker(ctx, i, ch, processor)
		}(i, ch)
	}
	go func() {
		defer d.wg.Done()
		d.runSweeper(ctx, journal, sweepInterval)
	}()
}

// Wait blocks until every goroutine launched by Start has returned.
func (d *CascadeDispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands a job to the worker responsible for its budget. It never
// blocks: when the shard is full the job is dropped and left to the next
// sweep, since it is still journaled.
func (d *CascadeDispatcher) Enqueue(job ports.CascadeJob) {
	idx := d.shardIndex(job.BudgetID)
	select {
	case d.workers[idx] <- job:
		metrics.CascadeQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.log.Warn().Str("budget_id", job.BudgetID).Int("worker_id", idx).Msg("cascade queue full, deferring to sweep")
	}
}

// Sweep enqueues every journaled cascade and reports how many were found.
func (d *CascadeDispatcher) Sweep(ctx context.Context, journal ports.CascadeJournal) (int, error) {
	jobs, err := journal.Pending(ctx)
	if err != nil {
		return 0, err
	}
	metrics.CascadeJournalPending.Set(float64(len(jobs)))
	for _, job := range jobs {
		d.Enqueue(job)
	}
	return len(jobs), nil
}

// shardIndex maps a budget id deterministically to a worker index.
func (d *CascadeDispatcher) shardIndex(budgetID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(budgetID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *CascadeDispatcher) runSweeper(ctx context.Context, journal ports.CascadeJournal, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if n, err := d.Sweep(ctx, journal); err != nil {
			d.log.Error().Err(err).Msg("cascade journal sweep failed")
		} else if n > 0 {
			d.log.Info().Int("jobs", n).Msg("re-enqueued pending cascades")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (d *CascadeDispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.CascadeJob, processor ports.CascadeProcessor) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			metrics.CascadeQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := processor.ResumeCascade(ctx, job); err != nil {
				d.log.Error().Err(err).
					Str("budget_id", job.BudgetID).
					Int("worker_id", id).
					Msg("cascade recovery failed")
			}
		}
	}
}
