// flowctl - workflow document validation and inspection CLI.
package main

import (
	"os"

	"chatflow-backend/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
