package main

import (
	"fmt"
	"os"

	"gosh/internal/config"
	"gosh/internal/shell"
)

func main() {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "gosh: %v\n", err)
		os.Exit(1)
	}

	s, err := shell.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gosh: %v\n", err)
		os.Exit(1)
	}

	if err := s.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "gosh: %v\n", err)
	}
	// The shell reports success to its invoker regardless of what the
	// commands it ran did.
}
