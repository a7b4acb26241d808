package shell

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Job tracks one background process for later status queries. Records
// are never removed; a finished job keeps its slot and number, so job
// numbers stay stable for the life of the session.
type Job struct {
	ID      int
	PID     int
	Line    string
	Running bool
}

// JobTracker owns the session's background job records. It is only
// ever touched by the shell's single control thread.
type JobTracker struct {
	jobs []*Job
	max  int
}

func NewJobTracker(max int) *JobTracker {
	if max <= 0 {
		max = 64
	}
	return &JobTracker{max: max}
}

// Register appends a running record. At capacity the job goes
// untracked and ok is false.
func (t *JobTracker) Register(pid int, line string) (*Job, bool) {
	if len(t.jobs) >= t.max {
		return nil, false
	}
	job := &Job{ID: len(t.jobs) + 1, PID: pid, Line: line, Running: true}
	t.jobs = append(t.jobs, job)
	return job, true
}

// Reconcile collects any children that have exited, without blocking,
// and marks the matching records finished. Untracked children are
// reaped too; having no children at all is a normal outcome.
func (t *JobTracker) Reconcile() {
	for {
		pid, err := unix.Wait4(-1, nil, unix.WNOHANG, nil)
		if err != nil || pid <= 0 {
			return
		}
		t.markFinished(pid)
	}
}

// Terminate sends SIGTERM to pid. Delivery failure (bad or already
// collected pid) is the caller's error to report.
func (t *JobTracker) Terminate(pid int) error {
	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		return fmt.Errorf("kill %d: %w", pid, err)
	}
	t.markFinished(pid)
	return nil
}

// List returns the records in registration order after a reconcile
// pass, so statuses are current.
func (t *JobTracker) List() []*Job {
	t.Reconcile()
	return append([]*Job(nil), t.jobs...)
}

func (t *JobTracker) markFinished(pid int) {
	for _, j := range t.jobs {
		if j.PID == pid && j.Running {
			j.Running = false
			return
		}
	}
}
