// Command tinybc is the compiler's command-line entry point.
package main

import (
	"os"

	"github.com/cwbudde/tinybc/cmd/tinybc/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
