package main

import "simbridge/cmd/simctl/command"

func main() {
	command.Execute()
}
