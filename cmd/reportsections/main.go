package main

import "github.com/devicelab-dev/reportsections/pkg/cli"

func main() {
	cli.Execute()
}
