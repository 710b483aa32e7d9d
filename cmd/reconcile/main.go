package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eshaffer321/reconcile-backend/internal/cli"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	subcommand, args := os.Args[1], os.Args[2:]

	var err error
	switch subcommand {
	case "serve":
		err = runServe(args)
	case "import":
		err = runImport(ctx, args)
	case "automatch":
		err = runAutoMatch(ctx, args)
	case "stats":
		err = runStats(ctx, args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Printf("Unknown subcommand: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(args []string) error {
	flags, err := cli.ParseServeFlags(args, os.Stderr)
	if err != nil {
		return err
	}
	cfg, err := cli.LoadConfig(flags.ConfigFile)
	if err != nil {
		return err
	}
	return cli.RunServe(cfg, flags)
}

func runImport(ctx context.Context, args []string) error {
	flags, err := cli.ParseImportFlags(args, os.Stderr)
	if err != nil {
		return err
	}
	cfg, err := cli.LoadConfig(flags.ConfigFile)
	if err != nil {
		return err
	}
	return cli.RunImport(ctx, cfg, flags, os.Stdout)
}

func runAutoMatch(ctx context.Context, args []string) error {
	flags, err := cli.ParseAutoMatchFlags(args, os.Stderr)
	if err != nil {
		return err
	}
	cfg, err := cli.LoadConfig(flags.ConfigFile)
	if err != nil {
		return err
	}
	return cli.RunAutoMatch(ctx, cfg, flags, os.Stdout)
}

func runStats(ctx context.Context, args []string) error {
	flags, err := cli.ParseStatsFlags(args, os.Stderr)
	if err != nil {
		return err
	}
	cfg, err := cli.LoadConfig(flags.ConfigFile)
	if err != nil {
		return err
	}
	return cli.RunStats(ctx, cfg, flags, os.Stdout)
}

func printUsage() {
	fmt.Println("Expense/Sale Reconciliation")
	fmt.Println("===========================")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  reconcile <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve                                   Run the HTTP API (and scheduler if configured)")
	fmt.Println("  import -owner ID -kind expense|sale F…  Import CSV files as pending transactions")
	fmt.Println("  automatch -owner ID | -all              Run auto-match once")
	fmt.Println("  stats -owner ID                         Print reconciliation totals")
	fmt.Println()
	fmt.Println("Common Options:")
	fmt.Println("  -config string      Configuration file path")
	fmt.Println("  -verbose            Enable verbose logging")
}
