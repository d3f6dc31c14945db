package main

import "debugsweep/internal/cli"

func main() {
	cli.Execute()
}
