// ABOUTME: printHelp renders usage text, grounded on cmd/mammoth/help.go's
// ABOUTME: plain fmt.Fprintln usage block (no generated help text).
package main

import (
	"fmt"
	"io"
)

func printHelp(w io.Writer, ver string) {
	fmt.Fprintf(w, "conveyor %s — configuration-driven pipeline runner\n", ver)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  conveyor <config.json|config.yaml>        Run a configuration document to drain")
	fmt.Fprintln(w, "  conveyor -validate <config>                Validate without executing")
	fmt.Fprintln(w, "  conveyor -server [-addr host:port] <config> Run with a live HTTP status server")
	fmt.Fprintln(w, "  conveyor -tui <config>                      Run with an interactive terminal dashboard")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -format json|yaml   Document format (default: inferred from file extension)")
	fmt.Fprintln(w, "  -audit-db <path>    Record an append-only SQLite audit trail of pipeline outcomes")
	fmt.Fprintln(w, "  -addr <host:port>   Status server listen address (default 127.0.0.1:2389)")
	fmt.Fprintln(w, "  -version            Print version and exit")
}
