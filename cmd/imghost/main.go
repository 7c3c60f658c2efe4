package main

import (
	"github.com/robotalks/imglink/pkg/cli/sh"
	"github.com/robotalks/imglink/pkg/config"
)

//go-build: CGO_ENABLED=0

func init() {
	config.SetupFlags()
}

func main() {
	sh.Main()
}
