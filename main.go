package main

import (
	"os"

	"github.com/evmobility/urbanev/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
