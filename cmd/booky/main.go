package main

import (
	"os"

	"github.com/booky-next/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
