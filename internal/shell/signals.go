package shell

import (
	"os"
	"os/signal"
	"syscall"
)

// trapSignals keeps Ctrl+C from killing the shell itself. At the
// prompt readline reports the interrupt; while a foreground child runs
// the child receives its own copy of the signal, so the shell only
// needs to swallow its own. The handler goroutine does nothing but
// drain the channel; prompt redisplay belongs to the main loop.
func (s *Shell) trapSignals() func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ch:
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
