// ABOUTME: runWithDashboard launches the condash Bubble Tea program polling
// ABOUTME: the running pool's snapshot, grounded on cmd/mammoth/main.go's
// ABOUTME: runPipelineWithTUI wiring of tea.NewProgram.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/conveyor/condash"
	"github.com/2389-research/conveyor/submit"
)

func runWithDashboard(pool *submit.Pool) int {
	model := condash.New(pool.Snapshot)
	p := tea.NewProgram(model, tea.WithAltScreen())

	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()
	go func() {
		<-done
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
