// Command mpcnet-log is a tool for viewing and analyzing mpcnet capture
// files written by log.FileLogger.
//
// Usage:
//
//	mpcnet-log <command> [flags] <file.mplog>
//
// Commands:
//
//	view     View capture in human-readable format
//	filter   Filter capture and write matching events to a new file
//	stats    Show statistics about the capture
//
// Examples:
//
//	# View all events
//	mpcnet-log view session.mplog
//
//	# View only outgoing frames
//	mpcnet-log view -category frame -direction out session.mplog
//
//	# Keep one connection's traffic
//	mpcnet-log filter -conn-id abc12345 -o conn.mplog session.mplog
//
//	# Show statistics
//	mpcnet-log stats session.mplog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mpcnet-protocol/mpcnet-go/cmd/mpcnet-log/commands"
)

const usage = `mpcnet-log - mpcnet capture analyzer

Usage:
  mpcnet-log <command> [flags] <file.mplog>

Commands:
  view     View capture in human-readable format
  filter   Filter capture and write matching events to a new file
  stats    Show statistics about the capture

Use "mpcnet-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	connID := fs.String("conn-id", "", "Filter by connection ID")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (frame, lane, error)")

	path := parsePath(fs, args)
	opts := commands.ViewOptions{
		ConnID:    *connID,
		Direction: *direction,
		Category:  *category,
	}
	if err := commands.RunView(path, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	output := fs.String("o", "filtered.mplog", "Output file path")
	connID := fs.String("conn-id", "", "Filter by connection ID")
	timeStart := fs.String("time-start", "", "Events at or after this RFC3339 time")
	timeEnd := fs.String("time-end", "", "Events before this RFC3339 time")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (frame, lane, error)")

	path := parsePath(fs, args)
	opts := commands.FilterOptions{
		Output:    *output,
		ConnID:    *connID,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Direction: *direction,
		Category:  *category,
	}
	count, err := commands.RunFilter(path, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Filtered %d events to %s\n", count, opts.Output)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	path := parsePath(fs, args)
	if err := commands.RunStats(path, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parsePath(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: capture file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}
