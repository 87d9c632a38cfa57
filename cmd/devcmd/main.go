package main

import (
	"os"

	"github.com/msto63/devcmd/cmd/devcmd/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
