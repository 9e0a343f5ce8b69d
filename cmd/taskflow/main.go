package main

import (
	"os"

	"github.com/viant/taskflow/cmd/taskflow/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
