package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Setup   SetupCommand   `command:"setup" description:"Scan serial ports for an arm and write the config file"`
	Monitor MonitorCommand `command:"monitor" description:"Live joint position chart"`
	Record  RecordCommand  `command:"record" description:"Record a hand-guided episode to a JSONL file"`
	Home    HomeCommand    `command:"home" description:"Move the arm to its rest pose"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "Dofbot - control CLI for the Yahboom Dofbot SE arm"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
