// Package parser turns a raw input line into an execution plan: the
// argument vectors to run, their redirection targets, and whether the
// whole thing goes to the background.
package parser

import (
	"errors"
	"fmt"

	"github.com/kballard/go-shellquote"
)

var (
	ErrNoCommand      = errors.New("no command given")
	ErrMissingOperand = errors.New("redirection operator without a target")
	ErrExtraPipe      = errors.New("only a single pipeline stage is supported")
	ErrEmptyStage     = errors.New("missing command beside '|'")
)

// Command is one external invocation with its private stream wiring.
// Argv never contains shell metacharacter tokens.
type Command struct {
	Argv       []string
	InputFile  string
	OutputFile string
	Append     bool
}

// Plan is everything one input line executes: a command, an optional
// second pipeline stage, and the background flag. A Plan lives for a
// single dispatch cycle and is never mutated after Parse returns.
type Plan struct {
	Cmd        Command
	Pipe       *Command
	Background bool
	Line       string
}

// Tokenize splits a line on whitespace, honoring quoting. Lines that
// produce more than limit tokens are truncated at the limit; the rest
// of the line is dropped.
func Tokenize(line string, limit int) ([]string, error) {
	tokens, err := shellquote.Split(line)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if limit > 0 && len(tokens) > limit {
		tokens = tokens[:limit]
	}
	return tokens, nil
}

// Parse tokenizes line and extracts redirections, a pipe split, and a
// trailing '&'. A '&' anywhere but the final token is an ordinary
// argument.
func Parse(line string, limit int) (*Plan, error) {
	tokens, err := Tokenize(line, limit)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, ErrNoCommand
	}

	plan := &Plan{Line: line}
	if tokens[len(tokens)-1] == "&" {
		plan.Background = true
		tokens = tokens[:len(tokens)-1]
		if len(tokens) == 0 {
			return nil, ErrNoCommand
		}
	}

	split := indexOf(tokens, "|")
	if split < 0 {
		cmd, err := extract(tokens)
		if err != nil {
			return nil, err
		}
		plan.Cmd = cmd
		return plan, nil
	}

	left, right := tokens[:split], tokens[split+1:]
	if len(left) == 0 || len(right) == 0 {
		return nil, ErrEmptyStage
	}
	if indexOf(right, "|") >= 0 {
		return nil, ErrExtraPipe
	}

	// Each side owns its redirections: cmd1 < in | cmd2 > out reads
	// 'in' on the left and writes 'out' on the right.
	cmd, err := extract(left)
	if err != nil {
		return nil, err
	}
	pipe, err := extract(right)
	if err != nil {
		return nil, err
	}
	plan.Cmd = cmd
	plan.Pipe = &pipe
	return plan, nil
}

// extract removes redirection operators and their operands from the
// token sequence and returns a fresh Command.
func extract(tokens []string) (Command, error) {
	var cmd Command
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok {
		case "<", ">", ">>":
			if i+1 >= len(tokens) {
				return Command{}, fmt.Errorf("%w: %q", ErrMissingOperand, tok)
			}
			i++
			switch tok {
			case "<":
				cmd.InputFile = tokens[i]
			case ">":
				cmd.OutputFile = tokens[i]
				cmd.Append = false
			case ">>":
				cmd.OutputFile = tokens[i]
				cmd.Append = true
			}
		default:
			cmd.Argv = append(cmd.Argv, tok)
		}
	}
	if len(cmd.Argv) == 0 {
		return Command{}, ErrNoCommand
	}
	return cmd, nil
}

func indexOf(tokens []string, want string) int {
	for i, tok := range tokens {
		if tok == want {
			return i
		}
	}
	return -1
}
