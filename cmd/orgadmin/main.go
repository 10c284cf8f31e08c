package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pbaille/orgadmin/internal/config"
	"github.com/pbaille/orgadmin/internal/gateway"
	"github.com/pbaille/orgadmin/internal/logging"
	"github.com/pbaille/orgadmin/internal/session"
	"github.com/pbaille/orgadmin/internal/store"
)

var (
	settings  *config.Config
	noHistory bool
)

func main() {
	cfg, err := config.Load(".env", ".env.local")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	settings = cfg

	rootCmd := &cobra.Command{
		Use:           "orgadmin",
		Short:         "Maintain the companies and configuration JSON documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return settings.Validate()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&settings.DataSource, "data", cfg.DataSource, "data directory or base URL to load documents from")
	flags.StringVar(&settings.DownloadDir, "out", cfg.DownloadDir, "directory exported documents are written to")
	flags.StringVar(&settings.HistoryDB, "history-db", cfg.HistoryDB, "export history database path")
	flags.StringVar(&settings.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.BoolVar(&settings.DeferNestedExport, "defer-nested-export", cfg.DeferNestedExport, "export department and person changes only when the company is saved again")
	flags.BoolVar(&settings.UniqueIDs, "unique-ids", cfg.UniqueIDs, "skip generated department and person ids already used elsewhere in the document")
	flags.BoolVar(&noHistory, "no-history", false, "do not archive exports")

	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(companiesCmd())
	rootCmd.AddCommand(companyCmd())
	rootCmd.AddCommand(departmentCmd())
	rootCmd.AddCommand(personCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles what a command needs to run one edit session
type app struct {
	log      zerolog.Logger
	store    *store.Store
	history  *store.History
	exporter *gateway.FileExporter
	ctrl     *session.Controller
}

// openApp loads the documents and wires a controller around them
func openApp(ctx context.Context) (*app, error) {
	log := logging.Console(settings.LogLevel)

	var history *store.History
	if !noHistory {
		h, err := getHistory()
		if err != nil {
			return nil, err
		}
		history = h
	}

	var opts []store.Option
	if settings.UniqueIDs {
		opts = append(opts, store.WithUniqueIDs())
	}
	s := store.New(opts...)
	gateway.NewLoader(settings.DataSource, settings.FetchTimeout, log).LoadAll(ctx, s)

	exporter := gateway.NewFileExporter(settings.DownloadDir, history, log)
	ctrl := session.New(s, exporter, session.Options{DeferNestedExport: settings.DeferNestedExport})

	return &app{log: log, store: s, history: history, exporter: exporter, ctrl: ctrl}, nil
}

func (a *app) Close() {
	if a.history != nil {
		a.history.Close()
	}
}

func getHistory() (*store.History, error) {
	// Ensure directory exists
	dir := filepath.Dir(settings.HistoryDB)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return store.OpenHistory(settings.HistoryDB)
}

// confirm asks a yes/no question on the command's input; anything but y/yes is a no
func confirm(cmd *cobra.Command, prompt string, assumeYes bool) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func parseIndex(arg, what string) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid %s index: %s", what, arg)
	}
	return i, nil
}
