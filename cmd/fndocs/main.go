package main

import (
	"fmt"
	"os"

	"github.com/vitalvas/fndocs/cli"
	"github.com/vitalvas/fndocs/openapi"
)

func main() {
	cmd := cli.NewRootCommand(openapi.DefaultRegistry)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
