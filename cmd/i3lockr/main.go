package main

import "github.com/bryanchriswhite/i3lockr/cmd/i3lockr/commands"

func main() {
	commands.Execute()
}
