package main

import (
	"os"

	"github.com/envsense/envsense/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
