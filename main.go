// Command densevec replays a walkthrough of the vector engine, one operation
// per step, logging every outcome to a file.
//
// Between steps it waits for 'C' (continue) or ESC (exit); -batch runs all
// steps without waiting.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/CK6170/densevec-go/logging"
	"github.com/CK6170/densevec-go/ui"
)

// App version variables. Set these at build time with -ldflags if desired.
var (
	AppVersion = "dev"
	AppBuild   = "local"
)

func main() {
	var (
		logPath   = flag.String("log", "log.txt", "file engine log records are written to")
		overwrite = flag.Bool("overwrite", false, "truncate the log file instead of appending")
		batch     = flag.Bool("batch", false, "run every step without waiting for a key")
		ieee      = flag.Bool("ieee", false, "also print the IEEE-754 encoding of each vector")
		gonum     = flag.Bool("gonum", false, "print vectors with gonum's matrix formatter")
		console   = flag.Bool("console", false, "also print log records, coloured by level, to stderr")
		version   = flag.Bool("version", false, "print the version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("%s\n", strings.TrimSpace(fmt.Sprintf("%s [build %s]", AppVersion, AppBuild)))
		return
	}

	// Route the standard logger output through the red writer
	log.SetFlags(0)
	log.SetOutput(ui.NewRedWriter(os.Stderr))

	fileLog, err := logging.Open(*logPath, *overwrite)
	if err != nil {
		log.Fatalf("Failed to open log: %v", err)
	}
	defer fileLog.Close()

	var logger logging.Logger = fileLog
	if *console {
		logger = logging.Multi(fileLog, logging.NewConsole())
	}

	for {
		d := &demo{out: os.Stdout, logger: logger, ieee: *ieee, gonum: *gonum}
		if !*batch {
			ui.ClearScreen()
			d.wait = func(prompt string) bool { return ui.NextContinueOrExit(prompt) != ui.Esc }
		}
		if err := d.run(); err != nil {
			if errors.Is(err, errStopped) {
				ui.Warningf("Stopped.\n")
				return
			}
			log.Print(err)
			fileLog.Close()
			os.Exit(1)
		}
		ui.Greenf("Done. Log written to %s\n", *logPath)
		if *batch || ui.NextYN("\nRun again? (Y/N)") != 'Y' {
			return
		}
	}
}
