// Command coursectl manages the course catalog from a terminal. It talks to
// the same slot store as the server, so changes show up on connected pages.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/learnhub/backend/config"
	"github.com/learnhub/backend/internal/backend"
	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/obfuscate"
	"github.com/learnhub/backend/internal/repository"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := backend.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open store", "error", err)
	}
	defer b.Close()

	codec := obfuscate.NewCodec(cfg.Crypto.Key)
	a := &app{
		courses: repository.NewCourseRepository(b.Store, codec, log),
		codec:   codec,
		log:     log,
		in:      os.Stdin,
		out:     os.Stdout,
	}

	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "coursectl: %v\n", err)
		os.Exit(1)
	}
}
