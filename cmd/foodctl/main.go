package main

import (
	"fmt"
	"os"

	"github.com/food-delivery-platform/backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
