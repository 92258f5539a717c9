package main

import (
	"fmt"
	"os"

	"project-scheduler/internal/app"
)

func main() {
	a := app.New()
	if err := a.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
