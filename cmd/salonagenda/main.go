package main

import "github.com/example/salon-agenda/cmd"

func main() {
	cmd.Execute()
}
