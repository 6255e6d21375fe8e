package main

import (
	"fmt"
	"os"

	"github.com/soyeahso/suite/internal/cli"
	"github.com/tillberg/autorestart"
)

func main() {
	go autorestart.RestartOnChange()

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
