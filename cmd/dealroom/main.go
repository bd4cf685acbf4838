package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spec-kit/dealroom-client/pkg/util"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error: "+renderError(err))
		os.Exit(1)
	}
}

// renderError turns taxonomy errors into the notice a view would show.
func renderError(err error) string {
	var clientErr *util.ClientError
	if !errors.As(err, &clientErr) {
		return err.Error()
	}
	if clientErr.Code == util.CodeSessionExpired {
		return "session expired, please log in again"
	}
	return clientErr.Message
}
