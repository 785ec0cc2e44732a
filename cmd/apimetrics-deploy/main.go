package main

import (
	"fmt"
	"os"

	"github.com/APImetrics/apimetrics-deploy/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
