package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kvcached/cached/cachetop"
)

var version = "dev"

func main() {
	fs := flag.NewFlagSet("cache-top", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "cache-top — watch cached traffic in real-time\n\nUsage:\n  cache-top [flags] <addr>\n\nFlags:\n")
		fs.PrintDefaults()
	}

	showVersion := fs.Bool("version", false, "show version and exit")

	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("cache-top %s\n", version)
		return
	}

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}

	if err := monitor(fs.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "cache-top: %v\n", err)
		os.Exit(1)
	}
}

func monitor(addr string) error {
	p := tea.NewProgram(cachetop.New(addr), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
