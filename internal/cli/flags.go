package cli

import (
	"errors"
	"flag"
	"io"

	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
)

// CommonFlags are accepted by every subcommand
type CommonFlags struct {
	ConfigFile string
	Verbose    bool
}

func (c *CommonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", "", "Configuration file path")
	fs.BoolVar(&c.Verbose, "verbose", false, "Verbose output")
}

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	CommonFlags
	Port     int
	Schedule string
}

// ParseServeFlags parses command line flags for the serve command.
func ParseServeFlags(args []string, stderr io.Writer) (*ServeFlags, error) {
	flags := &ServeFlags{}
	fs := newFlagSet("serve", stderr)
	flags.register(fs)
	fs.IntVar(&flags.Port, "port", 0, "Port to listen on (0 = from config)")
	fs.StringVar(&flags.Schedule, "schedule", "", "Cron spec for background auto-match, e.g. @hourly")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}

// ImportFlags holds the CLI flags for the import command.
type ImportFlags struct {
	CommonFlags
	Owner string
	Kind  transaction.Kind
	Files []string
}

// ParseImportFlags parses command line flags for the import command.
// Remaining arguments are the CSV files to import.
func ParseImportFlags(args []string, stderr io.Writer) (*ImportFlags, error) {
	flags := &ImportFlags{}
	var kind string
	fs := newFlagSet("import", stderr)
	flags.register(fs)
	fs.StringVar(&flags.Owner, "owner", "", "Owner the transactions belong to")
	fs.StringVar(&kind, "kind", "", "Transaction kind: expense or sale")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if flags.Owner == "" {
		return nil, errors.New("-owner is required")
	}
	k, err := transaction.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	flags.Kind = k
	flags.Files = fs.Args()
	if len(flags.Files) == 0 {
		return nil, errors.New("at least one CSV file is required")
	}
	return flags, nil
}

// AutoMatchFlags holds the CLI flags for the automatch command.
type AutoMatchFlags struct {
	CommonFlags
	Owner string
	All   bool
}

// ParseAutoMatchFlags parses command line flags for the automatch command.
func ParseAutoMatchFlags(args []string, stderr io.Writer) (*AutoMatchFlags, error) {
	flags := &AutoMatchFlags{}
	fs := newFlagSet("automatch", stderr)
	flags.register(fs)
	fs.StringVar(&flags.Owner, "owner", "", "Owner to auto-match")
	fs.BoolVar(&flags.All, "all", false, "Auto-match every owner with pending transactions")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if flags.All == (flags.Owner != "") {
		return nil, errors.New("exactly one of -owner or -all is required")
	}
	return flags, nil
}

// StatsFlags holds the CLI flags for the stats command.
type StatsFlags struct {
	CommonFlags
	Owner string
}

// ParseStatsFlags parses command line flags for the stats command.
func ParseStatsFlags(args []string, stderr io.Writer) (*StatsFlags, error) {
	flags := &StatsFlags{}
	fs := newFlagSet("stats", stderr)
	flags.register(fs)
	fs.StringVar(&flags.Owner, "owner", "", "Owner to summarize")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if flags.Owner == "" {
		return nil, errors.New("-owner is required")
	}
	return flags, nil
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if stderr != nil {
		fs.SetOutput(stderr)
	}
	return fs
}
