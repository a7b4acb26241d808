package shell

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"gosh/internal/parser"
)

// launch runs an external command plan: one process, or two joined by
// a pipe, foreground or background. Exit codes of commands that did
// run are discarded; only launch failures surface as errors.
func (s *Shell) launch(plan *parser.Plan) error {
	if plan.Pipe != nil {
		return s.launchPipeline(plan)
	}

	cmd, closers, err := s.buildCmd(plan.Cmd, plan.Background)
	if err != nil {
		return err
	}
	defer closeAll(closers)

	if plan.Background {
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("%s: %w", plan.Cmd.Argv[0], err)
		}
		s.registerJob(cmd.Process.Pid, plan.Line)
		return nil
	}

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			// the command ran; its exit status is its own business
			return nil
		}
		return fmt.Errorf("%s: %w", plan.Cmd.Argv[0], err)
	}
	return nil
}

// launchPipeline starts both stages concurrently, joined by an OS
// pipe, and waits for both in the foreground case. Redirection files
// apply to the side whose vector named them; the pipe itself owns
// stage one's stdout and stage two's stdin.
func (s *Shell) launchPipeline(plan *parser.Plan) error {
	left, lclose, err := s.buildCmd(plan.Cmd, plan.Background)
	if err != nil {
		return err
	}
	right, rclose, err := s.buildCmd(*plan.Pipe, plan.Background)
	if err != nil {
		closeAll(lclose)
		return err
	}
	closers := append(lclose, rclose...)
	defer closeAll(closers)

	pr, pw, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("pipe: %w", err)
	}
	left.Stdout = pw
	right.Stdin = pr

	if err := left.Start(); err != nil {
		pr.Close()
		pw.Close()
		return fmt.Errorf("%s: %w", plan.Cmd.Argv[0], err)
	}
	if err := right.Start(); err != nil {
		pr.Close()
		pw.Close()
		left.Process.Kill()
		left.Wait()
		return fmt.Errorf("%s: %w", plan.Pipe.Argv[0], err)
	}

	// The parent's pipe ends must close or stage two never sees EOF.
	pw.Close()
	pr.Close()

	if plan.Background {
		s.registerJob(left.Process.Pid, plan.Line)
		// stage two is untracked but still reaped by Reconcile
		return nil
	}

	left.Wait()
	right.Wait()
	return nil
}

// buildCmd wires one command's streams: input file or terminal on
// stdin (the null device for background jobs), output file or
// terminal on stdout. Every file opened here lands in closers and is
// closed when the cycle ends.
func (s *Shell) buildCmd(c parser.Command, background bool) (*exec.Cmd, []io.Closer, error) {
	cmd := exec.Command(c.Argv[0], c.Argv[1:]...)
	cmd.Env = os.Environ()
	var closers []io.Closer

	if c.InputFile != "" {
		f, err := os.Open(c.InputFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", c.InputFile, err)
		}
		closers = append(closers, f)
		cmd.Stdin = f
	} else if !background {
		cmd.Stdin = s.stdin
	}

	if c.OutputFile != "" {
		flags := os.O_WRONLY | os.O_CREATE
		if c.Append {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		f, err := os.OpenFile(c.OutputFile, flags, 0644)
		if err != nil {
			closeAll(closers)
			return nil, nil, fmt.Errorf("open %s: %w", c.OutputFile, err)
		}
		closers = append(closers, f)
		cmd.Stdout = f
	} else {
		cmd.Stdout = s.out
	}
	cmd.Stderr = s.err

	return cmd, closers, nil
}

func (s *Shell) registerJob(pid int, line string) {
	job, ok := s.jobs.Register(pid, line)
	if !ok {
		fmt.Fprintf(s.err, "gosh: job table full, pid %d is not tracked\n", pid)
		return
	}
	fmt.Fprintf(s.out, "[%d] %d\n", job.ID, pid)
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		c.Close()
	}
}
