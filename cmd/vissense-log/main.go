// Command vissense-log is a tool for viewing and analyzing monitor trace files.
//
// Trace files are written by vissense-sim with the -trace flag, or by any
// program that configures a monitor with a log.FileLogger.
//
// Usage:
//
//	vissense-log <command> [flags] <file.vlog>
//
// Commands:
//
//	view     View trace file in human-readable format
//	export   Export trace file to JSONL or CSV format
//	filter   Filter trace file and write to new file
//	stats    Show statistics about the trace file
//
// Examples:
//
//	# View all events
//	vissense-log view hero.vlog
//
//	# View only lifecycle events
//	vissense-log view -category lifecycle hero.vlog
//
//	# View every sample that left the element hidden
//	vissense-log view -topic update -state hidden hero.vlog
//
//	# Export to CSV
//	vissense-log export -format csv -o hero.csv hero.vlog
//
//	# Keep one monitor's events
//	vissense-log filter -monitor 3f2a9c1e -o one.vlog hero.vlog
//
//	# Show statistics
//	vissense-log stats hero.vlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vissense/vissense-go/cmd/vissense-log/commands"
	"github.com/vissense/vissense-go/pkg/log"
)

const usage = `vissense-log - VisSense Trace Analyzer

Usage:
  vissense-log <command> [flags] <file.vlog>

Commands:
  view     View trace file in human-readable format
  export   Export trace file to JSONL or CSV format
  filter   Filter trace file and write to new file
  stats    Show statistics about the trace file

Use "vissense-log <command> -help" for more information about a command.
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
	case "export":
		runExport(args)
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

// filterFlags registers the shared filter flags on fs.
func filterFlags(fs *flag.FlagSet) *commands.FilterOptions {
	opts := &commands.FilterOptions{}
	fs.StringVar(&opts.MonitorID, "monitor", "", "Filter by monitor ID")
	fs.StringVar(&opts.ElementID, "element", "", "Filter by element ID")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (sample, lifecycle)")
	fs.StringVar(&opts.Topic, "topic", "", "Filter by topic (update, hidden, visible, ...)")
	fs.StringVar(&opts.State, "state", "", "Filter samples by state (hidden, visible, fullyvisible)")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	return opts
}

// parseArgs parses args and returns the trace path and the built filter.
func parseArgs(fs *flag.FlagSet, opts *commands.FilterOptions, args []string) (string, log.Filter) {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}

	var filter log.Filter
	if opts != nil {
		var err error
		filter, err = opts.Build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	return fs.Arg(0), filter
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `vissense-log view - View trace file in human-readable format

Usage:
  vissense-log view [flags] <file.vlog>

Flags:
`)
		fs.PrintDefaults()
	}
	opts := filterFlags(fs)

	path, filter := parseArgs(fs, opts, args)

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `vissense-log export - Export trace file to JSONL or CSV format

Usage:
  vissense-log export [flags] <file.vlog>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	opts := filterFlags(fs)

	path, filter := parseArgs(fs, opts, args)

	if err := commands.RunExport(path, filter, *format, *output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `vissense-log filter - Filter trace file and write to new file

Usage:
  vissense-log filter [flags] <file.vlog>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (required)")
	opts := filterFlags(fs)

	path, filter := parseArgs(fs, opts, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	count, err := commands.RunFilter(path, *output, filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Filtered %d events to %s\n", count, *output)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `vissense-log stats - Show statistics about the trace file

Usage:
  vissense-log stats <file.vlog>

`)
	}

	path, _ := parseArgs(fs, nil, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
