package main

import (
	"fmt"
	"os"

	"github.com/kjhk3082/maum/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "maum: %v\n", err)
		os.Exit(1)
	}
}
