package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedirectRoundTrip(t *testing.T) {
	s, _, errOut := newTestShell(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")
	copied := filepath.Join(dir, "copy.txt")

	// redirection forces the PATH echo, not the builtin
	require.True(t, s.dispatch("echo hello > "+out))
	require.True(t, s.dispatch(fmt.Sprintf("cat < %s > %s", out, copied)))
	require.Empty(t, errOut.String())

	a, err := os.ReadFile(out)
	require.NoError(t, err)
	b, err := os.ReadFile(copied)
	require.NoError(t, err)

	assert.Equal(t, "hello\n", string(a))
	assert.Equal(t, string(a), string(b))
}

func TestAppendRedirection(t *testing.T) {
	s, _, errOut := newTestShell(t)
	path := filepath.Join(t.TempDir(), "log.txt")

	require.True(t, s.dispatch("echo one > "+path))
	require.True(t, s.dispatch("echo two >> "+path))
	require.Empty(t, errOut.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(data))
}

func TestTruncateOverwrites(t *testing.T) {
	s, _, _ := newTestShell(t)
	path := filepath.Join(t.TempDir(), "out.txt")

	require.True(t, s.dispatch("echo first > "+path))
	require.True(t, s.dispatch("echo second > "+path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))
}

func TestPipelineToTerminal(t *testing.T) {
	s, out, errOut := newTestShell(t)

	require.True(t, s.dispatch("echo hi | cat"))
	require.Empty(t, errOut.String())
	assert.Equal(t, "hi\n", out.String())
}

// cmd1 < in | cmd2 > out: the input file feeds stage one, the output
// file captures stage two.
func TestPipelinePerSideRedirection(t *testing.T) {
	s, _, errOut := newTestShell(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(in, []byte("b\na\nc\n"), 0644))

	require.True(t, s.dispatch(fmt.Sprintf("cat < %s | sort > %s", in, out)))
	require.Empty(t, errOut.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", string(data))
}

// A streaming consumer must not deadlock: head exits after one line
// while the producer is still writing.
func TestPipelineStreamingConsumer(t *testing.T) {
	s, out, _ := newTestShell(t)

	done := make(chan struct{})
	go func() {
		s.dispatch("yes | head -n 1")
		close(done)
	}()

	select {
	case <-done:
		assert.Equal(t, "y\n", out.String())
	case <-time.After(10 * time.Second):
		t.Fatal("pipeline deadlocked on a streaming consumer")
	}
}

func TestBackgroundLaunchReturnsImmediately(t *testing.T) {
	s, out, errOut := newTestShell(t)

	start := time.Now()
	require.True(t, s.dispatch("sleep 5 &"))
	assert.Less(t, time.Since(start), 2*time.Second)
	require.Empty(t, errOut.String())

	jobs := s.jobs.List()
	require.Len(t, jobs, 1)
	assert.True(t, jobs[0].Running)
	assert.Equal(t, "sleep 5 &", jobs[0].Line)
	assert.Contains(t, out.String(), fmt.Sprintf("[1] %d", jobs[0].PID))

	// tear the job down and let Reconcile collect it
	require.NoError(t, s.jobs.Terminate(jobs[0].PID))
	assert.Eventually(t, func() bool {
		s.jobs.Reconcile()
		return !jobs[0].Running
	}, 3*time.Second, 50*time.Millisecond)
}

func TestBackgroundJobReportedFinished(t *testing.T) {
	s, _, _ := newTestShell(t)

	require.True(t, s.dispatch("true &"))

	assert.Eventually(t, func() bool {
		jobs := s.jobs.List()
		return len(jobs) == 1 && !jobs[0].Running
	}, 3*time.Second, 50*time.Millisecond)
}

func TestLaunchCommandNotFound(t *testing.T) {
	s, _, errOut := newTestShell(t)

	assert.True(t, s.dispatch("gosh-no-such-program-xyz arg"))
	assert.Contains(t, errOut.String(), "gosh-no-such-program-xyz")
}

func TestInputRedirectionOpenFailure(t *testing.T) {
	s, _, errOut := newTestShell(t)

	assert.True(t, s.dispatch("cat < /gosh-no-such-input-file"))
	assert.Contains(t, errOut.String(), "/gosh-no-such-input-file")
}

// Foreground commands that run but fail are not shell errors.
func TestForegroundExitCodeDiscarded(t *testing.T) {
	s, _, errOut := newTestShell(t)

	assert.True(t, s.dispatch("false"))
	assert.Empty(t, errOut.String())
}
