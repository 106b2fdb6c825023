package main

import (
	"fmt"
	"os"

	"github.com/flatironinstitute/cephdu/internal/cli"
)

// version is injected at build time via -ldflags.
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, "cephdu:", err)
		os.Exit(1)
	}
}
