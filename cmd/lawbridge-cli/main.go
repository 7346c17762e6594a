package main

import (
	"fmt"
	"os"

	"github.com/lawbridge/lawbridge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "lawbridge-cli:", err)
		os.Exit(1)
	}
}
