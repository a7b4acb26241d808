package shell

import (
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestRegisterAssignsStableIDs(t *testing.T) {
	tr := NewJobTracker(8)

	j1, ok := tr.Register(1234, "sleep 1 &")
	require.True(t, ok)
	j2, ok := tr.Register(5678, "sleep 2 &")
	require.True(t, ok)

	assert.Equal(t, 1, j1.ID)
	assert.Equal(t, 2, j2.ID)
	assert.True(t, j1.Running)
}

func TestRegisterAtCapacityDrops(t *testing.T) {
	tr := NewJobTracker(2)
	_, ok := tr.Register(1, "a &")
	require.True(t, ok)
	_, ok = tr.Register(2, "b &")
	require.True(t, ok)

	_, ok = tr.Register(3, "c &")
	assert.False(t, ok)
	assert.Len(t, tr.List(), 2)
}

func TestReconcileWithNoChildren(t *testing.T) {
	tr := NewJobTracker(8)
	done := make(chan struct{})
	go func() {
		tr.Reconcile()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Reconcile blocked with no children")
	}
}

func TestReconcileMarksFinished(t *testing.T) {
	cmd := exec.Command("true")
	require.NoError(t, cmd.Start())

	tr := NewJobTracker(8)
	job, ok := tr.Register(cmd.Process.Pid, "true &")
	require.True(t, ok)

	// the child is reaped by Reconcile, never by cmd.Wait
	assert.Eventually(t, func() bool {
		tr.Reconcile()
		return !job.Running
	}, 3*time.Second, 50*time.Millisecond)
}

func TestTerminateRunningJob(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	pid := cmd.Process.Pid

	tr := NewJobTracker(8)
	job, ok := tr.Register(pid, "sleep 30 &")
	require.True(t, ok)

	require.NoError(t, tr.Terminate(pid))
	assert.False(t, job.Running)

	// the corpse is collected by Reconcile; signal 0 probes existence
	assert.Eventually(t, func() bool {
		tr.Reconcile()
		return unix.Kill(pid, 0) != nil
	}, 3*time.Second, 50*time.Millisecond)
}

func TestTerminateUnknownPid(t *testing.T) {
	tr := NewJobTracker(8)
	// far above any default pid_max
	err := tr.Terminate(1 << 30)
	assert.Error(t, err)
}

func TestListPreservesRegistrationOrder(t *testing.T) {
	tr := NewJobTracker(8)
	tr.Register(111, "first &")
	tr.Register(222, "second &")
	tr.Register(333, "third &")

	jobs := tr.List()
	require.Len(t, jobs, 3)
	assert.Equal(t, []int{111, 222, 333}, []int{jobs[0].PID, jobs[1].PID, jobs[2].PID})
}
