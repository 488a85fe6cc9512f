package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/marcus/rolo/internal/api"
	"github.com/marcus/rolo/internal/storedb"
)

func runAdmin(args []string) {
	if len(args) == 0 {
		printAdminUsage()
		os.Exit(1)
	}

	var err error
	switch args[0] {
	case "stats":
		err = runAdminStats(args[1:], os.Stdout)
	case "export":
		err = runAdminExport(args[1:], os.Stdout)
	case "import":
		err = runAdminImport(args[1:], os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown admin command: %s\n", args[0])
		printAdminUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printAdminUsage() {
	fmt.Fprintln(os.Stderr, `Usage: rolo-store admin <command> [flags]

Commands:
  stats   Show record counts and schema version
  export  Write the database as db.json to stdout or --out
  import  Load a db.json file into an empty database`)
}

const dbFlagUsage = "path to rolo.db (default: from ROLO_STORE_DB_PATH or ./data/rolo.db)"

func openDB(dbPath string) (*storedb.DB, error) {
	if dbPath == "" {
		dbPath = api.LoadConfig().DBPath
	}
	store, err := storedb.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return store, nil
}

func runAdminStats(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("admin stats", flag.ExitOnError)
	dbPath := fs.String("db", "", dbFlagUsage)
	fs.Parse(args)

	store, err := openDB(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	c, err := store.Count(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "database:  %s\n", store.Path())
	fmt.Fprintf(w, "schema:    v%d\n", c.SchemaVersion)
	fmt.Fprintf(w, "contacts:  %d (%d favorites)\n", c.Contacts, c.Favorites)
	fmt.Fprintf(w, "activity:  %d entries\n", c.ActivityLogs)
	return nil
}

func runAdminExport(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("admin export", flag.ExitOnError)
	dbPath := fs.String("db", "", dbFlagUsage)
	out := fs.String("out", "", "write to this file instead of stdout")
	fs.Parse(args)

	store, err := openDB(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	dump, err := store.Export(context.Background())
	if err != nil {
		return err
	}

	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dump)
}

func runAdminImport(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("admin import", flag.ExitOnError)
	dbPath := fs.String("db", "", dbFlagUsage)
	file := fs.String("file", "", "db.json file to load (required)")
	fs.Parse(args)

	if *file == "" {
		fs.Usage()
		return fmt.Errorf("--file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	var dump storedb.Dump
	if err := json.Unmarshal(data, &dump); err != nil {
		return fmt.Errorf("parse %s: %w", *file, err)
	}

	store, err := openDB(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	c, err := store.Import(context.Background(), dump)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "imported %d contacts and %d activity entries into %s\n", c.Contacts, c.ActivityLogs, store.Path())
	return nil
}
