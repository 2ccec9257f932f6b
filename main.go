// file: main.go
// version: 2.0.0
// guid: 1b4e7c2a-9d63-4f08-a5e1-3c7f0b9d2e64

package main

import (
	"fmt"
	"os"

	"github.com/jdfalk/qualification-planner/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
