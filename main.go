package main

import "crowdmarks/cmd"

func main() {
	cmd.Execute()
}
