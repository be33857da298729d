package main

import (
	"fmt"
	"os"
)

// Version is set via -ldflags during build
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
