package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kvcached/cached/netsrv"
	"github.com/kvcached/cached/store"
	"github.com/kvcached/cached/web"
)

var version = "dev"

func main() {
	fs := flag.NewFlagSet("cached", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "cached — in-memory key/value cache with pub/sub\n\nUsage:\n  cached [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	port := fs.Int("port", 6789, "listen port (binds 127.0.0.1)")
	maxConns := fs.Int64("max-conns", 256, "maximum concurrent connections")
	httpAddr := fs.String("http", "", "web dashboard listen address (e.g. 127.0.0.1:8080); disabled if empty")
	showVersion := fs.Bool("version", false, "show version and exit")

	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("cached %s\n", version)
		return
	}

	if err := run(*port, *maxConns, *httpAddr); err != nil {
		log.Fatal(err)
	}
}

func run(port int, maxConns int64, httpAddr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := store.New()

	var lc net.ListenConfig
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	if httpAddr != "" {
		httpLis, err := lc.Listen(ctx, "tcp", httpAddr)
		if err != nil {
			return fmt.Errorf("listen http %s: %w", httpAddr, err)
		}
		webSrv := web.New(engine)
		go func() {
			log.Printf("web dashboard listening on %s", httpAddr)
			if err := webSrv.Serve(httpLis); err != nil {
				log.Printf("http serve: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = webSrv.Shutdown(shutdownCtx)
		}()
	}

	log.Printf("cached listening on %s (max-conns=%d)", addr, maxConns)
	return netsrv.Run(ctx, ln, engine, maxConns)
}
