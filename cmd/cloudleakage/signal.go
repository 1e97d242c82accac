package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// signalContext derives a context that is cancelled on SIGINT or SIGTERM.
//
// Only the first signal is handled. It cancels the context and releases the
// handler, so a second signal kills the process the usual way.
func signalContext(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-ch
		signal.Stop(ch)

		fmt.Fprintf(os.Stderr, "\nReceived %s, stopping (send again to terminate immediately)\n", sig)
		cancel()
	}()

	return ctx
}
