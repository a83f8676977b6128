package main

import (
	"os"

	"pylens/internal/cliapp"
)

func main() {
	os.Exit(cliapp.Run(os.Args[1:]))
}
