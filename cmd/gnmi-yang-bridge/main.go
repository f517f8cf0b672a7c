package main

import "gnmi-yang-bridge/internal/cli"

func main() {
	cli.Execute()
}
