// Command `densevec-server` serves a vector workspace over HTTP.
//
// Vectors are created, mutated and combined through JSON APIs; every engine
// log record is streamed to WebSocket clients on /ws/log and, with -log, also
// written to a file.
//
// Flags:
//
//	-addr:      TCP address to listen on (default 127.0.0.1:8080)
//	-web:       optional directory with a static frontend (index.html)
//	-vectors:   optional vector file to preload
//	-log:       append engine log records to this file
//	-overwrite: truncate the -log file instead of appending
//	-strict:    validate every element Scale and ApplyFunction produce
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/CK6170/densevec-go/file"
	"github.com/CK6170/densevec-go/internal/server"
	"github.com/CK6170/densevec-go/logging"
	"github.com/CK6170/densevec-go/ui"
)

func main() {
	var (
		addr      = flag.String("addr", "127.0.0.1:8080", "http listen address")
		web       = flag.String("web", "", "path to web root (index.html); empty serves the API only")
		vectors   = flag.String("vectors", "", "vector file to preload into the workspace")
		logPath   = flag.String("log", "", "append engine log records to this file")
		overwrite = flag.Bool("overwrite", false, "truncate the -log file instead of appending")
		strict    = flag.Bool("strict", false, "validate every element Scale and ApplyFunction produce")
	)
	flag.Parse()

	// Startup failures are printed in red.
	log.SetOutput(ui.NewRedWriter(os.Stderr))

	cfg := server.Config{Strict: *strict}
	if *web != "" {
		// Resolve web directory to an absolute path so logging and FileServer
		// behavior are consistent regardless of the current working directory.
		webDir, err := filepath.Abs(*web)
		if err != nil {
			log.Fatalf("Failed to resolve web directory: %v", err)
		}
		if st, err := os.Stat(webDir); err != nil || !st.IsDir() {
			log.Fatalf("Web directory does not exist: %s", webDir)
		}
		cfg.WebDir = webDir
	}
	if *logPath != "" {
		l, err := logging.Open(*logPath, *overwrite)
		if err != nil {
			log.Fatalf("Failed to open log: %v", err)
		}
		defer l.Close()
		cfg.Logger = l
	}

	s := server.New(cfg)
	if *vectors != "" {
		vf, err := file.LoadVectors(*vectors)
		if err != nil {
			log.Fatalf("Failed to load vectors: %v", err)
		}
		loaded, err := s.Load(vf)
		if err != nil {
			log.Fatalf("Failed to load vectors: %v", err)
		}
		for _, v := range loaded {
			ui.Greenf("Loaded %-12s dim=%d id=%s\n", v.Name, v.Dim, v.ID)
		}
	}

	// Bind the listen address early so we fail fast if the port is in use.
	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", *addr, err)
	}
	ui.Greenf("Serving on %s\n", makeURL(*addr))

	if err := http.Serve(ln, s.Handler()); err != nil {
		fmt.Println(err)
	}
}

// makeURL turns a listen address (host:port) into a reachable URL. Wildcard
// hosts are replaced by 127.0.0.1.
func makeURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Sprintf("http://%s/", strings.TrimSpace(addr))
	}
	if host == "" || host == "0.0.0.0" || host == "::" || host == "[::]" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%s/", host, port)
}
