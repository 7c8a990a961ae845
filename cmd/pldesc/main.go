package main

import (
	"fmt"
	"os"

	"github.com/FNNDSC/chrisapp/internal/cli"
)

// set by the linker at release time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cli.NewRootCommand(version, commit, date).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
