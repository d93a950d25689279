// ABOUTME: runWithStatusServer starts webstatus alongside a running pool
// ABOUTME: and waits for either the run to drain or the server to fail.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/2389-research/conveyor/store"
	"github.com/2389-research/conveyor/submit"
	"github.com/2389-research/conveyor/webstatus"
)

func runWithStatusServer(ctx context.Context, addr string, pool *submit.Pool, audit *store.Store) int {
	srv := webstatus.New(pool.Snapshot, audit)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe(addr)
	}()
	fmt.Fprintf(os.Stderr, "status server listening on http://%s\n", addr)

	drained := make(chan struct{})
	go func() {
		pool.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return 0
	case err := <-serverErrCh:
		if err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "error: status server: %v\n", err)
			return 1
		}
		return 0
	case <-ctx.Done():
		pool.Wait()
		return 0
	}
}
