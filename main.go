package main

import "github.com/arenoe-studio/gmailsense/internal/cli"

func main() {
	cli.Execute()
}
