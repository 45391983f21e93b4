package main

import (
	"flag"
	"os"

	"github.com/ChizhovVadim/eloarena/internal/stub"
)

func main() {
	var behavior string
	flag.StringVar(&behavior, "behavior", string(stub.Normal), "normal, silent, exit-on-go, exit-at-start, deaf, illegal or stubborn")
	flag.Parse()
	os.Exit(stub.Main(stub.Behavior(behavior), os.Stdin, os.Stdout))
}
