// Command tracker is a personal expense ledger on the command line.
package main

import (
	"os"

	"tracker/cmd/tracker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
