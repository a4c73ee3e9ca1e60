package report

import (
	"errors"
	"testing"
	"time"
)

func waitForJob(t *testing.T, job *Job) ([]byte, error) {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		if data, err, ok := job.Result(); ok {
			return data, err
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return nil, nil
}

func TestRunner_JobLifecycle(t *testing.T) {
	r := NewRunner(600, 300, time.Hour)
	v := testView(t)
	job := r.Start(v, testOptions(false))

	if job.Filename != "PMR_Report_Q1_Y2025.pdf" {
		t.Errorf("unexpected filename %q", job.Filename)
	}
	got, err := r.Get(job.ID)
	if err != nil || got != job {
		t.Fatalf("Get should return the running job, err=%v", err)
	}

	data, jobErr := waitForJob(t, job)
	if jobErr != nil {
		t.Fatalf("job failed: %v", jobErr)
	}
	if len(data) == 0 {
		t.Errorf("finished job has no result bytes")
	}
	if job.State() != JobDone {
		t.Errorf("expected done, got %q", job.State())
	}
}

func TestRunner_GetUnknown(t *testing.T) {
	r := NewRunner(600, 300, time.Hour)
	if _, err := r.Get("nope"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestJob_SubscribeStreamsTerminalEvent(t *testing.T) {
	r := NewRunner(600, 300, time.Hour)
	job := r.Start(testView(t), testOptions(true))

	events, cancel := job.Subscribe()
	defer cancel()

	var last ProgressEvent
	for ev := range events {
		last = ev
	}
	if last.Stage != "done" {
		t.Errorf("expected terminal done event, got %+v", last)
	}
}

func TestJob_SubscribeAfterFinish(t *testing.T) {
	r := NewRunner(600, 300, time.Hour)
	job := r.Start(testView(t), testOptions(true))
	if _, err := waitForJob(t, job); err != nil {
		t.Fatalf("job failed: %v", err)
	}

	events, cancel := job.Subscribe()
	defer cancel()
	ev, ok := <-events
	if !ok || ev.Stage != "done" {
		t.Errorf("late subscriber should get the terminal event, got %+v ok=%v", ev, ok)
	}
}

func TestRunner_PruneKeepsRunningJobs(t *testing.T) {
	r := NewRunner(600, 300, time.Nanosecond)
	job := r.Start(testView(t), testOptions(true))
	if _, err := waitForJob(t, job); err != nil {
		t.Fatalf("job failed: %v", err)
	}
	time.Sleep(time.Millisecond)
	r.prune()
	if _, err := r.Get(job.ID); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("finished job past keep window should be pruned, got %v", err)
	}
}
