package main

import "massa_gateway/internal/cli"

var (
	AppName = "Massa lookup CLI"
	Version = "latest"
)

func main() {
	cli.Execute(AppName, Version)
}
