// Package shell implements the interactive session: the read loop,
// builtin dispatch, process launching and background job tracking.
package shell

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"gosh/internal/config"
	"gosh/internal/history"
	"gosh/internal/parser"
)

var promptCwd = color.New(color.FgCyan, color.Bold)

// Shell is one interactive session. All mutable state (history, jobs)
// hangs off it; there are no package globals.
type Shell struct {
	config  *config.Config
	history *history.History
	jobs    *JobTracker
	reader  *readline.Instance

	stdin io.Reader
	out   io.Writer
	err   io.Writer
}

func New(cfg *config.Config) (*Shell, error) {
	s := &Shell{
		config:  cfg,
		history: history.New(cfg.HistorySize),
		jobs:    NewJobTracker(cfg.MaxJobs),
		stdin:   os.Stdin,
		out:     os.Stdout,
		err:     os.Stderr,
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt: s.prompt(),
	})
	if err != nil {
		return nil, fmt.Errorf("readline: %w", err)
	}
	s.reader = rl

	return s, nil
}

// Run is the read-eval loop. It returns on 'exit' or end of input;
// every other failure is confined to the cycle that caused it.
func (s *Shell) Run() error {
	defer s.reader.Close()
	restore := s.trapSignals()
	defer restore()

	for {
		s.jobs.Reconcile()
		s.reader.SetPrompt(s.prompt())

		line, err := s.reader.Readline()
		switch {
		case err == readline.ErrInterrupt:
			continue
		case err == io.EOF:
			// Ctrl+D behaves like typing 'exit'
			fmt.Fprintln(s.out, "exit")
			return nil
		case err != nil:
			return fmt.Errorf("read input: %w", err)
		}

		if !s.dispatch(line) {
			return nil
		}
	}
}

// dispatch runs one command cycle and reports whether the loop should
// keep going.
func (s *Shell) dispatch(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	s.history.Add(line)

	plan, err := parser.Parse(line, s.config.MaxArgs)
	if err != nil {
		fmt.Fprintf(s.err, "gosh: %v\n", err)
		return true
	}

	// Builtins claim plain invocations only; with a pipe, redirection
	// or '&' the PATH version of the command runs instead.
	c := plan.Cmd
	if plan.Pipe == nil && !plan.Background && c.InputFile == "" && c.OutputFile == "" {
		if keep, handled, err := s.runBuiltin(c.Argv); handled {
			if err != nil {
				fmt.Fprintf(s.err, "gosh: %v\n", err)
			}
			return keep
		}
	}

	if err := s.launch(plan); err != nil {
		fmt.Fprintf(s.err, "gosh: %v\n", err)
	}
	return true
}

func (s *Shell) prompt() string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "?"
	}
	return promptCwd.Sprint(cwd) + " " + s.config.Prompt
}
