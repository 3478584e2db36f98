// Command ztctl evaluates classroom authorization requests and manages
// policy files from the command line.
package main

import (
	"os"

	"github.com/laughtale01/Scratch-sub001/cmd/ztctl/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
