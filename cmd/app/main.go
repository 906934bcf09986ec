package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"commerce-engine/internal/adapters/cli"
	"commerce-engine/internal/adapters/repl"
	"commerce-engine/internal/bootstrap"
	"commerce-engine/internal/config"
)

// With no arguments app runs the interactive terminal for TERMINAL_ID;
// otherwise the first argument is a one-shot command.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer rt.Close()

	if len(os.Args) > 1 {
		if err := cli.Run(ctx, rt.Service, os.Stdout, os.Args[1:]); err != nil {
			rt.Close()
			log.Fatalf("%v", err)
		}
		return
	}

	if err := repl.Run(ctx, rt.Service, bufio.NewReader(os.Stdin), os.Stdout, cfg.TerminalID); err != nil {
		rt.Close()
		log.Fatalf("%v", err)
	}
}
