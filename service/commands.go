package service

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"blog/app/config"
	"blog/app/database"
	"blog/app/repositories"
	"blog/app/repositories/postgres"
)

// loadConfig is replaced in tests.
var loadConfig = config.Load

// HandleCommand runs an application subcommand and returns an exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		printHelp()
		return 1
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "serve":
		return runCommand(rest, nil, serve)
	case "migrate":
		return runCommand(rest, nil, migrateCmd)
	case "db":
		return handleDBCommand(rest)
	case "help":
		printHelp()
		return 0
	default:
		fmt.Printf("Unknown command: %s\n\n", cmd)
		printHelp()
		return 1
	}
}

// handleDBCommand runs a "db" subcommand.
func handleDBCommand(args []string) int {
	if len(args) < 1 {
		fmt.Println("Error: db subcommand required")
		printHelp()
		return 1
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "init":
		return runCommand(rest, nil, initDb)
	case "clean":
		var yes bool
		return runCommand(rest, &yes, func(ctx context.Context, cfg config.Config, _ []string) error {
			return clean(ctx, cfg, yes)
		})
	case "backup":
		return runCommand(rest, nil, backup)
	case "restore":
		var yes bool
		return runCommand(rest, &yes, func(_ context.Context, cfg config.Config, args []string) error {
			if len(args) < 1 {
				return errors.New("backup file path required for restore")
			}
			return restore(cfg, args[0], yes)
		})
	case "seed":
		return runCommand(rest, nil, func(ctx context.Context, cfg config.Config, args []string) error {
			if len(args) < 1 {
				return errors.New("seed file path required")
			}
			return seed(ctx, cfg, args[0])
		})
	default:
		fmt.Printf("Unknown db command: %s\n\n", cmd)
		printHelp()
		return 1
	}
}

type commandFunc func(ctx context.Context, cfg config.Config, args []string) error

// runCommand parses the shared flags, loads the configuration and runs fn
// until it returns or the process is interrupted.
func runCommand(args []string, yes *bool, fn commandFunc) int {
	fs := flag.NewFlagSet("blog", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	configPath := fs.String("config", os.Getenv("BLOG_CONFIG"), "path to a TOML config file")
	if yes != nil {
		fs.BoolVar(yes, "y", false, "skip the confirmation prompt")
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if err := config.SetupLogging(cfg.Log, os.Stderr); err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fn(ctx, cfg, fs.Args()); err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	return 0
}

func printHelp() {
	helpText := `Usage: blog <command> [-config file.toml] [arguments]

Commands:
  serve                     Run the blog HTTP server
  migrate                   Apply PostgreSQL schema migrations
  db init                   Initialize a new empty database
  db clean [-y]             Remove all blog data
  db backup [file]          Create a backup of the Badger database
  db restore [-y] <file>    Restore the Badger database from a backup
  db seed <file.toml>       Load posts and comments from a TOML file
  help                      Display this help message
`
	fmt.Println(helpText)
}

func serve(ctx context.Context, cfg config.Config, _ []string) error {
	return RunAppServer(ctx, cfg)
}

func migrateCmd(_ context.Context, cfg config.Config, _ []string) error {
	if cfg.Storage.Driver != config.DriverPostgres {
		return fmt.Errorf("migrate requires the %s storage driver", config.DriverPostgres)
	}
	if err := database.RunMigrations(cfg.Storage.DatabaseURL); err != nil {
		return err
	}
	fmt.Println("Migrations applied successfully")
	return nil
}

// confirm asks a yes/no question on stdin.
func confirm(question string) bool {
	fmt.Print(question + " [y/N] ")
	var response string
	fmt.Scanln(&response)
	if response != "y" && response != "Y" {
		fmt.Println("Operation cancelled")
		return false
	}
	return true
}

func initDb(ctx context.Context, cfg config.Config, args []string) error {
	if cfg.Storage.Driver == config.DriverPostgres {
		return migrateCmd(ctx, cfg, args)
	}

	path := cfg.Storage.BadgerPath
	if _, err := os.Stat(path); err == nil {
		fmt.Println("Database already exists. Use 'clean' first if you want to reinitialize.")
		return nil
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	store, err := OpenStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := store.Close(); err != nil {
		return err
	}
	fmt.Println("Database initialized successfully")
	return nil
}

func clean(ctx context.Context, cfg config.Config, yes bool) error {
	if cfg.Storage.Driver == config.DriverPostgres {
		if !yes && !confirm("Are you sure you want to delete every post and comment? This cannot be undone.") {
			return nil
		}
		db, err := database.Open(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Clear(ctx, db); err != nil {
			return err
		}
		fmt.Println("Database cleaned successfully")
		return nil
	}

	path := cfg.Storage.BadgerPath
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("Database is already clean (does not exist)")
		return nil
	}
	if !yes && !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to clean database: %w", err)
	}
	fmt.Println("Database cleaned successfully")
	return nil
}

func requireBadger(cfg config.Config, cmd string) error {
	if cfg.Storage.Driver != config.DriverBadger {
		return fmt.Errorf("%s is only supported for the %s storage driver; use pg_dump for PostgreSQL", cmd, config.DriverBadger)
	}
	return nil
}

func openBadger(cfg config.Config) (*repositories.Store, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return repositories.OpenStore(cfg.Storage.BadgerPath, loc)
}

func backup(_ context.Context, cfg config.Config, args []string) error {
	if err := requireBadger(cfg, "backup"); err != nil {
		return err
	}
	if _, err := os.Stat(cfg.Storage.BadgerPath); os.IsNotExist(err) {
		fmt.Println("No database exists to backup")
		return nil
	}

	backupFile := filepath.Join("data", "backups", fmt.Sprintf("backup_%d.db", time.Now().Unix()))
	if len(args) > 0 {
		backupFile = args[0]
	}
	if err := os.MkdirAll(filepath.Dir(backupFile), 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	store, err := openBadger(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	f, err := os.Create(backupFile)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	if err := store.Backup(f); err != nil {
		return err
	}
	fmt.Printf("Database backed up successfully to %s\n", backupFile)
	return nil
}

func restore(cfg config.Config, backupFile string, yes bool) error {
	if err := requireBadger(cfg, "restore"); err != nil {
		return err
	}
	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", backupFile)
	}
	if err != nil {
		return err
	}
	if fi.Size() == 0 {
		return fmt.Errorf("backup file is empty: %s", backupFile)
	}

	path := cfg.Storage.BadgerPath
	if _, err := os.Stat(path); err == nil {
		if !yes && !confirm("Existing database found. Do you want to replace it?") {
			return nil
		}
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove existing database: %w", err)
		}
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := openBadger(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	if err := loadBackup(store, f); err != nil {
		return err
	}
	fmt.Println("Database restored successfully")
	return nil
}

// loadBackup turns a panic inside badger's loader into an error.
func loadBackup(store *repositories.Store, r io.Reader) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic occurred during restore: %v", p)
		}
	}()
	return store.Restore(r)
}

func seed(ctx context.Context, cfg config.Config, path string) error {
	file, err := LoadSeedFile(path)
	if err != nil {
		return err
	}
	storage, err := OpenStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer storage.Close()

	nPosts, nComments, err := Seed(ctx, file, storage.Posts, storage.Comments)
	if err != nil {
		return err
	}
	fmt.Printf("Seeded %d posts and %d comments\n", nPosts, nComments)
	return nil
}
