package main

import (
	"github.com/tfbuild/svcmap/internal/cli"
)

func main() {
	cli.Execute()
}
