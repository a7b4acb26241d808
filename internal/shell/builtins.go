package shell

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// A builtin runs in-process with the full argument vector and reports
// whether the shell should keep looping.
type builtinFunc func(s *Shell, args []string) (bool, error)

// builtins is the closed registry of in-process commands. Anything
// else is launched as an external program.
var builtins = map[string]builtinFunc{
	"cd":      (*Shell).cd,
	"exit":    (*Shell).exitShell,
	"pwd":     (*Shell).pwd,
	"echo":    (*Shell).echo,
	"history": (*Shell).showHistory,
	"env":     (*Shell).printEnv,
	"set":     (*Shell).setEnv,
	"unset":   (*Shell).unsetEnv,
	"jobs":    (*Shell).listJobs,
	"kill":    (*Shell).killJob,
}

// help is registered here: its body walks the registry, and listing it
// in the literal would be an initialization cycle.
func init() {
	builtins["help"] = (*Shell).help
}

// runBuiltin dispatches args to a builtin if the name matches one.
// handled is false when the command is not a builtin.
func (s *Shell) runBuiltin(args []string) (keepRunning, handled bool, err error) {
	fn, ok := builtins[args[0]]
	if !ok {
		return true, false, nil
	}
	keep, err := fn(s, args)
	return keep, true, err
}

func (s *Shell) cd(args []string) (bool, error) {
	dir := s.config.HomeDir
	if len(args) > 1 {
		dir = args[1]
	}
	if dir == "" {
		return true, fmt.Errorf("cd: no directory given")
	}
	if err := os.Chdir(dir); err != nil {
		return true, fmt.Errorf("cd: %w", err)
	}
	return true, nil
}

func (s *Shell) exitShell(args []string) (bool, error) {
	return false, nil
}

func (s *Shell) help(args []string) (bool, error) {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(s.out, "gosh, a small interactive shell")
	fmt.Fprintln(s.out, "Type program names and arguments and hit enter.")
	fmt.Fprintln(s.out, "The following are built in:")
	for _, name := range names {
		fmt.Fprintf(s.out, "  %s\n", name)
	}
	fmt.Fprintln(s.out, "Supports one pipe ('|'), redirection ('<', '>', '>>') and background jobs ('&').")
	return true, nil
}

func (s *Shell) pwd(args []string) (bool, error) {
	dir, err := os.Getwd()
	if err != nil {
		return true, fmt.Errorf("pwd: %w", err)
	}
	fmt.Fprintln(s.out, dir)
	return true, nil
}

func (s *Shell) echo(args []string) (bool, error) {
	fmt.Fprintln(s.out, strings.Join(args[1:], " "))
	return true, nil
}

func (s *Shell) showHistory(args []string) (bool, error) {
	for i, line := range s.history.Entries() {
		fmt.Fprintf(s.out, "%4d  %s\n", i+1, line)
	}
	return true, nil
}

func (s *Shell) printEnv(args []string) (bool, error) {
	for _, kv := range os.Environ() {
		fmt.Fprintln(s.out, kv)
	}
	return true, nil
}

func (s *Shell) setEnv(args []string) (bool, error) {
	if len(args) != 3 {
		return true, fmt.Errorf("usage: set VAR VALUE")
	}
	if err := os.Setenv(args[1], args[2]); err != nil {
		return true, fmt.Errorf("set: %w", err)
	}
	return true, nil
}

func (s *Shell) unsetEnv(args []string) (bool, error) {
	if len(args) != 2 {
		return true, fmt.Errorf("usage: unset VAR")
	}
	if err := os.Unsetenv(args[1]); err != nil {
		return true, fmt.Errorf("unset: %w", err)
	}
	return true, nil
}

func (s *Shell) listJobs(args []string) (bool, error) {
	jobs := s.jobs.List()
	if len(jobs) == 0 {
		fmt.Fprintln(s.out, "no background jobs")
		return true, nil
	}
	for _, j := range jobs {
		status := color.RedString("finished")
		if j.Running {
			status = color.GreenString("running")
		}
		fmt.Fprintf(s.out, "[%d] PID: %d  %s  (%s)\n", j.ID, j.PID, j.Line, status)
	}
	return true, nil
}

func (s *Shell) killJob(args []string) (bool, error) {
	if len(args) != 2 {
		return true, fmt.Errorf("usage: kill PID")
	}
	pid, err := strconv.Atoi(args[1])
	if err != nil || pid <= 0 {
		return true, fmt.Errorf("kill: invalid pid %q", args[1])
	}
	if err := s.jobs.Terminate(pid); err != nil {
		return true, err
	}
	return true, nil
}
