package main

import (
	"fmt"
	"os"

	"github.com/wardenhq/warden/cmd/warden/subcmds"
)

// _main takes command-line flags and returns an error rather than
// exiting, so it can be exercised from tests.
func _main(cmdlineArgs []string) error {
	rootCmd := subcmds.NewRootCommand()
	rootCmd.SetArgs(cmdlineArgs)
	return rootCmd.Execute()
}

func main() {
	if err := _main(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
