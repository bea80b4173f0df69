// Command logserv serves the most recent lines of append-only log files
// under the working directory over HTTP, optionally fanning queries out
// to peer instances in aggregator mode.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coffersTech/logserv/internal/cluster"
	"github.com/coffersTech/logserv/internal/server"
)

const listenAddr = ":1065"

func main() {
	os.Exit(run(os.Args[1:]))
}

type httpServer interface {
	Start(addr string) error
	Shutdown(ctx context.Context) error
}

func run(args []string) int {
	for _, a := range args {
		if a == "-h" || a == "--help" {
			printUsage(os.Stdout)
			return 0
		}
	}

	fs := flag.NewFlagSet("logserv", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	hosts := fs.String("hosts", "", "semicolon-separated peer hosts; enables aggregator mode")
	if err := fs.Parse(args); err != nil {
		printUsage(os.Stderr)
		return 1
	}

	hostList := *hosts
	if hostList == "" {
		hostList = os.Getenv("HOSTS")
	}

	wd, err := os.Getwd()
	if err != nil {
		log.Printf("failed to resolve working directory: %v", err)
		return 1
	}

	var srv httpServer
	if hostList != "" {
		peers := splitHosts(hostList)
		log.Printf("starting in aggregator mode with %d peers", len(peers))
		srv = cluster.NewServer(wd, peers)
	} else {
		log.Printf("starting in local mode, serving %s", wd)
		srv = server.New(wd)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", listenAddr)
		errCh <- srv.Start(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Printf("server stopped: %v", err)
			return 1
		}
	case sig := <-quit:
		log.Printf("received signal: %v, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown error: %v", err)
			return 1
		}
	}
	return 0
}

func splitHosts(raw string) []string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: logserv [--hosts \"<h1>;<h2>;...\"]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Serves the most recent lines of append-only log files under the current")
	fmt.Fprintln(w, "working directory over HTTP on port 1065.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  -h, --help       show this message")
	fmt.Fprintln(w, "  --hosts <list>   semicolon-separated peer hosts; enables aggregator mode")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "HOSTS is consulted as a fallback when --hosts is not given.")
}
