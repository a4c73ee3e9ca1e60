package report

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"pmr-generator/internal/pmr"
)

// JobState is the lifecycle of one export job.
type JobState string

const (
	JobRunning JobState = "running"
	JobDone    JobState = "done"
	JobFailed  JobState = "failed"
)

// ProgressEvent is one update streamed to export subscribers.
type ProgressEvent struct {
	Stage   string `json:"stage"` // "section", "done" or "error"
	Section string `json:"section,omitempty"`
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	Error   string `json:"error,omitempty"`
}

// ErrJobNotFound means the job ID is unknown or already pruned.
var ErrJobNotFound = errors.New("report job not found")

// Job is one background PDF export. The view and filter state are baked in
// at creation, so a filter change after the export starts cannot change the
// document.
type Job struct {
	ID        string
	Filename  string
	CreatedAt time.Time

	mu       sync.Mutex
	state    JobState
	result   []byte
	err      error
	subs     []chan ProgressEvent
	finished time.Time
}

// State returns the current lifecycle state.
func (j *Job) State() JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Result returns the finished PDF bytes, or the failure error. ok is false
// while the job is still running.
func (j *Job) Result() (data []byte, err error, ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state == JobRunning {
		return nil, nil, false
	}
	return j.result, j.err, true
}

// Subscribe registers a progress listener. The returned cancel must be
// called when the listener goes away. A subscriber joining a finished job
// immediately receives the terminal event.
func (j *Job) Subscribe() (<-chan ProgressEvent, func()) {
	ch := make(chan ProgressEvent, 64)
	j.mu.Lock()
	if j.state != JobRunning {
		ch <- j.terminalEventLocked()
		close(ch)
		j.mu.Unlock()
		return ch, func() {}
	}
	j.subs = append(j.subs, ch)
	j.mu.Unlock()

	cancel := func() {
		j.mu.Lock()
		defer j.mu.Unlock()
		for i, s := range j.subs {
			if s == ch {
				j.subs = append(j.subs[:i], j.subs[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

func (j *Job) terminalEventLocked() ProgressEvent {
	if j.state == JobFailed {
		msg := ""
		if j.err != nil {
			msg = j.err.Error()
		}
		return ProgressEvent{Stage: "error", Error: msg}
	}
	return ProgressEvent{Stage: "done"}
}

func (j *Job) publish(ev ProgressEvent) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, ch := range j.subs {
		select {
		case ch <- ev:
		default: // slow subscriber drops events rather than blocking the render
		}
	}
}

func (j *Job) finish(data []byte, err error) {
	j.mu.Lock()
	j.result = data
	j.err = err
	j.finished = time.Now()
	if err != nil {
		j.state = JobFailed
	} else {
		j.state = JobDone
	}
	ev := j.terminalEventLocked()
	subs := j.subs
	j.subs = nil
	j.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
		close(ch)
	}
}

// Runner owns the export jobs: one goroutine per job, results held in
// memory until pruned.
type Runner struct {
	mu          sync.Mutex
	jobs        map[string]*Job
	chartWidth  int
	chartHeight int
	keep        time.Duration
	stop        chan struct{}
}

// NewRunner builds a runner; finished jobs are pruned after keep.
func NewRunner(chartWidth, chartHeight int, keep time.Duration) *Runner {
	return &Runner{
		jobs:        make(map[string]*Job),
		chartWidth:  chartWidth,
		chartHeight: chartHeight,
		keep:        keep,
		stop:        make(chan struct{}),
	}
}

// Start snapshots the view and launches the export in the background.
func (r *Runner) Start(v pmr.View, opts Options) *Job {
	job := &Job{
		ID:        uuid.NewString(),
		Filename:  opts.Filename(),
		CreatedAt: time.Now(),
		state:     JobRunning,
	}
	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()

	go func() {
		log.Printf("[Export] job %s started (%s)", job.ID, job.Filename)
		sections := Compose(v, opts)
		data, err := RenderPDF(sections, opts, r.chartWidth, r.chartHeight, func(i, total int, title string) {
			job.publish(ProgressEvent{Stage: "section", Section: title, Index: i, Total: total})
		})
		if err != nil {
			log.Printf("[Export] job %s failed: %v", job.ID, err)
		} else {
			log.Printf("[Export] job %s done (%d bytes)", job.ID, len(data))
		}
		job.finish(data, err)
	}()
	return job
}

// Get returns a job by ID.
func (r *Runner) Get(id string) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// StartSweeper prunes finished jobs past their keep window.
func (r *Runner) StartSweeper() {
	ticker := time.NewTicker(time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.prune()
			case <-r.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweeper.
func (r *Runner) Stop() {
	close(r.stop)
}

func (r *Runner) prune() {
	cutoff := time.Now().Add(-r.keep)
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, job := range r.jobs {
		job.mu.Lock()
		expired := job.state != JobRunning && job.finished.Before(cutoff)
		job.mu.Unlock()
		if expired {
			delete(r.jobs, id)
		}
	}
}
