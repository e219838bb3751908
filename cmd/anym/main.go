package main

import "anym/internal/cli"

func main() {
	cli.Execute()
}
