// Package main is the entry point for the tsload compiler.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/tsload/cmd/tsload/commands"
	"go.trai.ch/tsload/internal/app"
	_ "go.trai.ch/tsload/internal/wiring"
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, provideComponents))
}

func provideComponents(ctx context.Context) (*app.Components, func(), error) {
	c, _, err := graft.ExecuteFor[*app.Components](ctx)
	return c, func() {}, err
}

// outputSetter is implemented by loggers whose destination can be changed.
type outputSetter interface {
	SetOutput(w io.Writer)
}

func run(
	ctx context.Context,
	args []string,
	stdout, stderr io.Writer,
	provider ComponentProvider,
) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, cleanup, err := provider(ctx)
	if err != nil {
		// The logger is not available when initialization failed.
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	defer cleanup()

	if s, ok := components.Logger.(outputSetter); ok {
		s.SetOutput(stderr)
	}

	cli := commands.New(components.App, components.Logger)
	cli.SetArgs(args)
	cli.SetOutput(stdout, stderr)

	code := 0
	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		code = 1
	}

	if err := components.App.Close(); err != nil {
		components.Logger.Error(err)
	}
	return code
}
