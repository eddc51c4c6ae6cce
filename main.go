package main

import (
	"context"
	"log/slog"

	"github.com/tonimelisma/dat/internal/cliutil"
)

func main() {
	ctx := shutdownContext(context.Background(), slog.Default())

	cmd := newRootCmd()
	cmd.SetContext(ctx)

	if err := cmd.Execute(); err != nil {
		cliutil.Fatal(err)
	}
}
