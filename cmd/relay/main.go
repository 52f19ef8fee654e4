package main

import (
	"os"

	"github.com/trevor-gituru/wireguard-relay-api/cmd/relay/commands"
)

func main() {
	if err := commands.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
