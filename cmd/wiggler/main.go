package main

import "github.com/stigoleg/wiggler/internal/cli"

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	cli.Main(version)
}
