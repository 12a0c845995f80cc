package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/boardlink/boardlink/internal/device"
	"github.com/boardlink/boardlink/internal/display"
	"github.com/boardlink/boardlink/internal/doctor"
	"github.com/boardlink/boardlink/internal/journal"
	"github.com/boardlink/boardlink/internal/link"
	"github.com/boardlink/boardlink/internal/log"
	"github.com/boardlink/boardlink/internal/manager"
	"github.com/boardlink/boardlink/internal/settings"
	"github.com/boardlink/boardlink/internal/storage"
	"github.com/boardlink/boardlink/internal/store"
	"github.com/boardlink/boardlink/internal/tui"
	"github.com/boardlink/boardlink/internal/watcher"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "start":
		if hasHelpFlag(args) {
			printStartHelp()
			os.Exit(0)
		}
		os.Exit(runStart(args))
	case "stop":
		if hasHelpFlag(args) {
			printStopHelp()
			os.Exit(0)
		}
		os.Exit(runStop(args))
	case "clear":
		if hasHelpFlag(args) {
			printClearHelp()
			os.Exit(0)
		}
		os.Exit(runClear(args))
	case "restart":
		if hasHelpFlag(args) {
			printRestartHelp()
			os.Exit(0)
		}
		os.Exit(runRestart(args))
	case "view", "list":
		if hasHelpFlag(args) {
			printViewHelp()
			os.Exit(0)
		}
		os.Exit(runView(args))
	case "ledger":
		os.Exit(runLedger(args))
	case "detect":
		os.Exit(runDetect(args))
	case "history":
		if hasHelpFlag(args) {
			printHistoryHelp()
			os.Exit(0)
		}
		os.Exit(runHistory(args))
	case "doctor":
		os.Exit(runDoctor(args))
	case "monitor":
		os.Exit(runMonitor(args))

	// --- NOUNS ---
	case "config":
		os.Exit(runConfigNoun(args))
	case "link":
		os.Exit(runLinkNoun(args))

	case "version":
		fmt.Printf("boardlink version %s\n", version)
		os.Exit(0)
	case "about":
		fmt.Println("boardlink - mirror local files onto an attached CircuitPython device")
		fmt.Println("Each link runs as a detached watcher process; coordination happens")
		fmt.Println("through JSON documents in the application directory.")
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(0)

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`boardlink - link supervisor for CircuitPython-style devices

Usage:
  boardlink <command> [arguments] [flags]

Link Commands:
  start <read> <write>   Create a link and launch its watcher
  stop <id|last|all>     Request watcher termination
  clear <id|last|all>    Remove an inactive link's record
  restart <id|last|all>  Clear and relaunch under a fresh id
  view [id|last|all]     Show link records as a table
  ledger                 Show active write-path claims
  history [id]           Show recent transfer journal entries

Environment Commands:
  detect                 Locate the attached device mount
  doctor                 Validate the application environment
  monitor                Live terminal dashboard
  config <action>        Inspect or edit user settings

General:
  version                Show version information
  about                  Show project description
  help                   Show this help message

Use 'boardlink <command> --help' for command-specific flags.
`)
}

// --- NOUN DISPATCHERS ---

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		printConfigNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printConfigNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "view":
		if hasHelpFlag(actionArgs) {
			printConfigViewHelp()
			return 0
		}
		return runConfigView(actionArgs)
	case "edit":
		if hasHelpFlag(actionArgs) {
			printConfigEditHelp()
			return 0
		}
		return runConfigEdit(actionArgs)
	case "filepath":
		return runConfigFilepath(actionArgs)
	case "reset":
		return runConfigReset(actionArgs)
	case "help":
		printConfigNounHelp(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

// runLinkNoun hosts the internal watcher entrypoint. It is not listed
// in the usage text; the manager spawns 'boardlink link run --id N'.
func runLinkNoun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: boardlink link run --id <id>\n")
		return 1
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "run":
		return runLinkRun(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown link action: %s\n", action)
		return 1
	}
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

func flagWasSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

func printStartHelp() {
	fmt.Println("Usage: boardlink start <read> <write> [--name NAME] [--path PATH] [--recursive] [--wipe-dest] [--skip-presave]")
	fmt.Println("Create a link mirroring files matching <read> into <write> on the device.")
	fmt.Println("<write> is joined to the detected device mount unless absolute or --path is given.")
}

func printStopHelp() {
	fmt.Println("Usage: boardlink stop <id|last|all> [--hard-fault]")
	fmt.Println("Ask a watcher to terminate, waiting a short grace period for acknowledgement.")
	fmt.Println("Single targets default to --hard-fault=true; 'all' sweeps default to false.")
}

func printClearHelp() {
	fmt.Println("Usage: boardlink clear <id|last|all> [--force] [--hard-fault]")
	fmt.Println("Remove an inactive link's record. --force stops a live watcher first.")
	fmt.Println("Single targets default to --hard-fault=true; 'all' sweeps default to false.")
}

func printRestartHelp() {
	fmt.Println("Usage: boardlink restart <id|last|all>")
	fmt.Println("Relaunch an inactive link under a fresh id with the same configuration.")
}

func printViewHelp() {
	fmt.Println("Usage: boardlink view [id|last|all] [--abs-path]")
	fmt.Println("Show link records as a table. Defaults to all links.")
}

func printHistoryHelp() {
	fmt.Println("Usage: boardlink history [id] [--limit N]")
	fmt.Println("Show recent transfer journal entries, newest first.")
}

func printConfigNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: boardlink config <action> [flags]")
	fmt.Fprintln(w, "Actions: view, edit, filepath, reset")
}

func printConfigViewHelp() {
	fmt.Println("Usage: boardlink config view [key]")
	fmt.Println("Show the full settings file or a single dotted key.")
}

func printConfigEditHelp() {
	fmt.Println("Usage: boardlink config edit <key>=<value>")
	fmt.Println("Set a settings value. Invalid values are rejected and rolled back.")
}

// --- ENVIRONMENT HELPERS ---

func openStore() (*store.Store, error) {
	layout, err := store.ResolveLayout()
	if err != nil {
		return nil, err
	}
	if err := layout.Ensure(); err != nil {
		return nil, err
	}
	return store.Open(layout)
}

func newManager(s *store.Store) *manager.Manager {
	return manager.New(manager.Config{
		Store:    s,
		Launcher: manager.NewExecLauncher(s.Layout()),
		Finder:   device.Find,
		Logger:   log.WithComponent("manager"),
	})
}

func openJournal(ctx context.Context, s *store.Store) (*journal.Journal, func(), error) {
	db, err := storage.OpenSQLite(ctx, s.Layout().JournalPath())
	if err != nil {
		return nil, nil, err
	}
	return journal.New(db), func() { _ = db.Close() }, nil
}

func displayOptions(s *store.Store) display.Options {
	f, err := settings.Load(s.Layout().SettingsPath())
	if err != nil {
		return display.FromSettings(settings.Defaults())
	}
	return display.FromSettings(f.Settings())
}

// resolveIDs expands an id token into concrete link ids. Numeric tokens
// pass through unchecked; missing ids surface later as not-found.
func resolveIDs(s *store.Store, token string) ([]int, error) {
	switch token {
	case "all":
		descs, err := s.List("*")
		if err != nil {
			return nil, err
		}
		ids := make([]int, 0, len(descs))
		for _, d := range descs {
			ids = append(ids, d.ID)
		}
		return ids, nil
	case "last":
		id, err := s.LastID()
		if err != nil {
			return nil, err
		}
		return []int{id}, nil
	default:
		id, err := strconv.Atoi(token)
		if err != nil || id < 1 {
			return nil, fmt.Errorf("%w: link id must be a positive number, 'last', or 'all'", link.ErrValidation)
		}
		return []int{id}, nil
	}
}

// splitIDToken pulls the first non-flag argument out of args so flags
// may follow the id, like 'boardlink stop 3 --hard-fault'.
func splitIDToken(args []string) (string, []string) {
	var token string
	var remaining []string
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") && token == "" {
			token = arg
		} else {
			remaining = append(remaining, arg)
		}
	}
	return token, remaining
}

// --- ACTION IMPLEMENTATIONS ---

func runStart(args []string) int {
	var name, path, baseDir string
	var recursive, wipeDest, skipPresave bool

	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	fs.StringVar(&name, "name", "", "Human-readable link name")
	fs.StringVar(&path, "path", "", "Explicit destination path, bypasses device discovery")
	fs.StringVar(&baseDir, "base-dir", "", "Directory the read pattern resolves against (default cwd)")
	fs.BoolVar(&recursive, "recursive", false, "Mirror matching files in subdirectories too")
	fs.BoolVar(&wipeDest, "wipe-dest", false, "Empty the destination before the first copy pass")
	fs.BoolVar(&skipPresave, "skip-presave", false, "Record existing matches without copying them")

	// Positionals may appear before flags, so filter them out first.
	var positionals []string
	var remaining []string
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") && len(positionals) < 2 {
			positionals = append(positionals, arg)
		} else {
			remaining = append(remaining, arg)
		}
	}

	if err := fs.Parse(remaining); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	if len(positionals) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: boardlink start <read> <write> [flags]\n")
		return 1
	}

	s, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Store error: %v\n", err)
		return 1
	}

	id, err := newManager(s).Start(context.Background(), manager.StartRequest{
		Name:        name,
		ReadPath:    positionals[0],
		WritePath:   positionals[1],
		Path:        path,
		BaseDir:     baseDir,
		Recursive:   recursive,
		WipeDest:    wipeDest,
		SkipPresave: skipPresave,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("Started link #%d\n", id)
	return 0
}

func runStop(args []string) int {
	token, remaining := splitIDToken(args)

	var hardFault bool
	fs := flag.NewFlagSet("stop", flag.ContinueOnError)
	fs.BoolVar(&hardFault, "hard-fault", false, "Treat a watcher that cannot stop cleanly as an error")
	if err := fs.Parse(remaining); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	if token == "" {
		fmt.Fprintf(os.Stderr, "Usage: boardlink stop <id|last|all> [--hard-fault]\n")
		return 1
	}

	// A single target surfaces its precise error; a bulk sweep keeps
	// going past links that were already down. The flag overrides.
	if !flagWasSet(fs, "hard-fault") {
		hardFault = token != "all"
	}

	s, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Store error: %v\n", err)
		return 1
	}

	ids, err := resolveIDs(s, token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	mgr := newManager(s)
	code := 0
	for _, id := range ids {
		if err := mgr.Stop(context.Background(), id, hardFault); err != nil {
			fmt.Fprintf(os.Stderr, "Error: stop link %d: %v\n", id, err)
			code = 1
			continue
		}
		fmt.Printf("Stopped link #%d\n", id)
	}
	return code
}

func runClear(args []string) int {
	token, remaining := splitIDToken(args)

	var force, hardFault bool
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	fs.BoolVar(&force, "force", false, "Stop a live watcher before clearing")
	fs.BoolVar(&hardFault, "hard-fault", false, "Treat a missing record as an error")
	if err := fs.Parse(remaining); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	if token == "" {
		fmt.Fprintf(os.Stderr, "Usage: boardlink clear <id|last|all> [--force] [--hard-fault]\n")
		return 1
	}

	if !flagWasSet(fs, "hard-fault") {
		hardFault = token != "all"
	}

	s, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Store error: %v\n", err)
		return 1
	}

	ids, err := resolveIDs(s, token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	mgr := newManager(s)
	code := 0
	for _, id := range ids {
		if err := mgr.Clear(context.Background(), id, force, hardFault); err != nil {
			fmt.Fprintf(os.Stderr, "Error: clear link %d: %v\n", id, err)
			code = 1
			continue
		}
		fmt.Printf("Cleared link #%d\n", id)
	}
	return code
}

func runRestart(args []string) int {
	token, remaining := splitIDToken(args)

	fs := flag.NewFlagSet("restart", flag.ContinueOnError)
	if err := fs.Parse(remaining); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	if token == "" {
		fmt.Fprintf(os.Stderr, "Usage: boardlink restart <id|last|all>\n")
		return 1
	}

	s, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Store error: %v\n", err)
		return 1
	}

	ids, err := resolveIDs(s, token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	mgr := newManager(s)
	code := 0
	for _, id := range ids {
		newID, err := mgr.Restart(context.Background(), id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: restart link %d: %v\n", id, err)
			code = 1
			continue
		}
		fmt.Printf("Restarted link #%d as #%d\n", id, newID)
	}
	return code
}

func runView(args []string) int {
	token, remaining := splitIDToken(args)
	if token == "" {
		token = "all"
	}

	var absPath bool
	fs := flag.NewFlagSet("view", flag.ContinueOnError)
	fs.BoolVar(&absPath, "abs-path", false, "Show fully resolved read and write paths")
	if err := fs.Parse(remaining); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	s, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Store error: %v\n", err)
		return 1
	}

	ids, err := resolveIDs(s, token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var descs []link.Descriptor
	for _, id := range ids {
		d, err := s.Get(id)
		if err != nil {
			if errors.Is(err, link.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "Error: link %d not found\n", id)
				return 1
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		descs = append(descs, d)
	}

	if len(descs) == 0 {
		fmt.Println("No links.")
		return 0
	}

	opts := displayOptions(s)
	opts.AbsPaths = absPath
	fmt.Println(display.Links(descs, opts))
	return 0
}

func runLedger(args []string) int {
	s, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Store error: %v\n", err)
		return 1
	}

	rows, err := newManager(s).LedgerRows()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if len(rows) == 0 {
		fmt.Println("No active claims.")
		return 0
	}

	fmt.Println(display.Ledger(rows, displayOptions(s)))
	return 0
}

func runDetect(args []string) int {
	mount, err := device.Find()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println(mount)
	return 0
}

func runHistory(args []string) int {
	token, remaining := splitIDToken(args)

	var limit int
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.IntVar(&limit, "limit", 25, "Maximum number of entries to show")
	if err := fs.Parse(remaining); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	s, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Store error: %v\n", err)
		return 1
	}

	ctx := context.Background()
	j, closeJournal, err := openJournal(ctx, s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Journal error: %v\n", err)
		return 1
	}
	defer closeJournal()

	var entries []journal.Entry
	if token == "" {
		entries, err = j.List(ctx, limit)
	} else {
		var id int
		id, err = strconv.Atoi(token)
		if err != nil || id < 1 {
			fmt.Fprintf(os.Stderr, "Error: history takes a numeric link id\n")
			return 1
		}
		entries, err = j.ListByLink(ctx, id, limit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if len(entries) == 0 {
		fmt.Println("No journal entries.")
		return 0
	}

	fmt.Println(display.History(entries, displayOptions(s)))
	return 0
}

func runDoctor(args []string) int {
	var jsonOut bool
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.BoolVar(&jsonOut, "json", false, "Output in structured JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	s, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Store error: %v\n", err)
		return 1
	}

	alive := manager.NewExecLauncher(s.Layout()).Alive
	result := doctor.New(s, device.Find, alive).Validate(context.Background())

	if jsonOut {
		out, err := doctor.FormatJSON(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "JSON format error: %v\n", err)
			return 1
		}
		fmt.Println(out)
	} else {
		fmt.Print(doctor.FormatHuman(result))
	}

	if !result.Valid {
		return 1
	}
	return 0
}

func runMonitor(args []string) int {
	s, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Store error: %v\n", err)
		return 1
	}

	ctx := context.Background()
	j, closeJournal, err := openJournal(ctx, s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Journal error: %v\n", err)
		return 1
	}
	defer closeJournal()

	if _, err := tea.NewProgram(tui.NewMonitor(s, j)).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Monitor error: %v\n", err)
		return 1
	}
	return 0
}

// runLinkRun is the watcher entrypoint. The manager launches it in a
// detached session with stdout redirected to the per-link log file.
func runLinkRun(args []string) int {
	var id int
	var logLevel string

	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.IntVar(&id, "id", 0, "Link id to watch")
	fs.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	if id < 1 {
		fmt.Fprintf(os.Stderr, "Usage: boardlink link run --id <id>\n")
		return 1
	}

	log.Setup(logLevel)
	logger := log.WithLink(id)

	s, err := openStore()
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.OpenSQLite(ctx, s.Layout().JournalPath())
	if err != nil {
		logger.Error("failed to open journal", "path", s.Layout().JournalPath(), "error", err)
		return 1
	}
	defer db.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	w := watcher.New(watcher.Config{
		Store:   s,
		Journal: journal.New(db),
		Logger:  log.Get(),
		LinkID:  id,
	})

	logger.Info("watcher starting", "version", version)
	if err := w.Run(ctx); err != nil {
		logger.Error("watcher exited abnormally", "error", err)
		return 1
	}
	logger.Info("watcher stopped")
	return 0
}

func runConfigView(args []string) int {
	s, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Store error: %v\n", err)
		return 1
	}

	f, err := settings.Load(s.Layout().SettingsPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Settings error: %v\n", err)
		return 1
	}

	if len(args) > 0 {
		val, err := f.GetPath(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Printf("%v\n", val)
		return 0
	}

	raw, err := f.Raw()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Print(raw)
	return 0
}

func runConfigEdit(args []string) int {
	if len(args) != 1 || !strings.Contains(args[0], "=") {
		fmt.Fprintf(os.Stderr, "Usage: boardlink config edit <key>=<value>\n")
		return 1
	}

	parts := strings.SplitN(args[0], "=", 2)
	key, value := parts[0], parts[1]

	s, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Store error: %v\n", err)
		return 1
	}

	f, err := settings.Load(s.Layout().SettingsPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Settings error: %v\n", err)
		return 1
	}

	if err := f.SetPath(key, value, true); err != nil {
		fmt.Fprintf(os.Stderr, "Apply failed: %v\n", err)
		return 1
	}

	fmt.Printf("Successfully set %q to %q\n", key, value)
	return 0
}

func runConfigFilepath(args []string) int {
	layout, err := store.ResolveLayout()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println(layout.SettingsPath())
	return 0
}

func runConfigReset(args []string) int {
	s, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Store error: %v\n", err)
		return 1
	}

	if err := settings.Reset(s.Layout().SettingsPath()); err != nil {
		fmt.Fprintf(os.Stderr, "Reset failed: %v\n", err)
		return 1
	}

	fmt.Println("Settings restored to defaults.")
	return 0
}
