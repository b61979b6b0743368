package main

import "github.com/docfoundry/moniker-strip/cmd"

func main() {
	cmd.Execute()
}
