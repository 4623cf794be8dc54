package main

import (
	"fmt"
	"os"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "larkmemo:", err)
		os.Exit(1)
	}
}
