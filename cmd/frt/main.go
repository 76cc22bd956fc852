package main

import (
	"os"

	"github.com/awnumar/memguard"
	"github.com/fahmaliyi/fortress/cli"
)

func main() {
	// Wipe locked key buffers if the process is interrupted mid-command.
	memguard.CatchInterrupt()
	defer memguard.Purge()

	if err := cli.NewRootCommand(cli.Options{}).Execute(); err != nil {
		cli.PrintError(os.Stderr, err)
		memguard.SafeExit(1)
	}
}
