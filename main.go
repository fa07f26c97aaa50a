package main

import (
	"fmt"
	"os"

	"github.com/openkraft/kraftlint/internal/adapters/inbound/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "kraftlint:", err)
		os.Exit(1)
	}
}
