package main

import "github.com/enetx/hsm/internal/cli"

func main() {
	cli.Execute()
}
