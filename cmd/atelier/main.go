// Command atelier compiles directive documents into sandboxed previews
// and manages series on the contract.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/atelier/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
