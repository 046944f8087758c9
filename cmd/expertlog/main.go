// Command expertlog serves the expert log backend and manages its stores.
package main

import (
	"os"

	"github.com/roach88/expertlog/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	os.Exit(cli.GetExitCode(err))
}
