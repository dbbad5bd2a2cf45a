// mlchess answers the position protocol on standard input and output.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/fatih/color"

	"github.com/hailam/mlchess/internal/logging"
	"github.com/hailam/mlchess/internal/protocol"
)

var logFile = flag.String("log", "", "write logs to this file")

func main() {
	flag.Parse()
	color.NoColor = true

	f, err := logging.InitLog(*logFile, "[mlchess] ")
	if err != nil {
		log.Fatal(err)
	}
	if f != nil {
		defer f.Close()
	}

	if err := protocol.New(os.Stdin, os.Stdout).Run(); err != nil {
		log.Fatal(err)
	}
}
