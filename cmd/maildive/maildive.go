package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/maildive/maildive/internal/log"
	"github.com/maildive/maildive/internal/model"
	"github.com/maildive/maildive/internal/report"
	"github.com/maildive/maildive/internal/scan"
	"github.com/maildive/maildive/internal/service"
	"github.com/maildive/maildive/internal/store"
	"github.com/maildive/maildive/internal/ui"

	"github.com/spf13/cobra"
)

var (
	flagScanTools     []string
	flagScanNoProbes  bool
	flagScanNoWhois   bool
	flagScanFormat    string
	flagScanOut       string
	flagHistoryLimit  int
	flagHistoryEmail  string
	flagHistoryFormat string
	flagWatchNow      bool
)

var scanCmd = &cobra.Command{
	Use:   "scan email...",
	Short: "scan runs every available source against the given addresses",
	Args:  cobra.MinimumNArgs(1),
	RunE:  doScan,
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "tools probes the catalog and tells which tools are runnable",
	RunE:  doTools,
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "reports lists the export files saved so far",
	RunE:  doReports,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "history lists scans stored in the local database",
	RunE:  doHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show session",
	Short: "show renders one stored report",
	Args:  cobra.ExactArgs(1),
	RunE:  doHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete session",
	Short: "delete removes one stored report",
	Args:  cobra.ExactArgs(1),
	RunE:  doHistoryDelete,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "watch scans the configured addresses on a schedule",
	RunE:  doWatch,
}

func doScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	attrs := slog.Group("maildive",
		slog.String("cmd", "scan"),
		slog.Int("pid", os.Getpid()),
	)
	ctx = log.ContextAttrs(ctx, attrs)

	if err := applyScanFlags(); err != nil {
		return err
	}

	emails := make([]model.EmailAddr, 0, len(args))
	for _, arg := range args {
		email, err := model.ParseEmail(arg)
		if err != nil {
			return err
		}
		emails = append(emails, email)
	}

	coordinator, pipeline, err := newScanPipeline(ctx)
	if err != nil {
		return err
	}
	defer coordinator.Shutdown(ctx)
	defer pipeline.Close(ctx)

	fmt.Print(ui.Tools(coordinator.Availability()))

	var errs []error
	for _, email := range emails {
		if err := scanOne(ctx, pipeline, email); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", email, err))
		}
	}
	return errors.Join(errs...)
}

// applyScanFlags folds the scan command flags into the loaded config. Flags
// can only narrow the tool selection and switch features off, re-enabling a
// tool the config disabled still takes a config edit.
func applyScanFlags() error {
	off := false
	if len(flagScanTools) > 0 {
		keep := make(map[model.ToolKind]bool, len(flagScanTools))
		for _, name := range flagScanTools {
			kind, err := model.ParseToolKind(name)
			if err != nil {
				return err
			}
			keep[kind] = true
		}
		for _, kind := range model.Kinds() {
			if !keep[kind] {
				config.Tools = append(config.Tools, model.ToolConfig{Name: kind.String(), Enabled: &off})
			}
		}
	}
	if flagScanNoProbes {
		if config.Probes == nil {
			config.Probes = &model.Probes{}
		}
		config.Probes.Enabled = &off
	}
	if flagScanNoWhois {
		if config.Whois == nil {
			config.Whois = &model.Whois{}
		}
		config.Whois.Enabled = &off
	}
	if flagScanFormat == "" && flagScanOut == "" {
		return nil
	}
	if config.Reports == nil {
		config.Reports = &model.Reports{}
	}
	if flagScanOut != "" {
		config.Reports.Dir = &flagScanOut
	}
	switch flagScanFormat {
	case "":
	case "all":
		config.Reports.Formats = []string{model.FormatJSON, model.FormatText, model.FormatPDF}
	case model.FormatJSON, model.FormatText, model.FormatPDF:
		config.Reports.Formats = []string{flagScanFormat}
	default:
		return fmt.Errorf("unknown report format %q", flagScanFormat)
	}
	return nil
}

// newScanPipeline builds the tool coordinator and the delivery pipeline,
// started and ready to scan. On success the caller owns both shutdowns.
func newScanPipeline(ctx context.Context) (*scan.Coordinator, *service.Pipeline, error) {
	coordinator, err := scan.New(config)
	if err != nil {
		return nil, nil, err
	}
	if err := coordinator.Start(ctx); err != nil {
		return nil, nil, err
	}
	pipeline, err := service.NewPipeline(ctx, config, coordinator)
	if err != nil {
		coordinator.Shutdown(ctx)
		return nil, nil, err
	}
	return coordinator, pipeline, nil
}

func scanOne(ctx context.Context, pipeline *service.Pipeline, email model.EmailAddr) error {
	rep, err := pipeline.Run(ctx, email)
	if rep.SessionID != "" && config.Reports != nil {
		fmt.Print(ui.Summary(rep, report.Paths(config, rep)))
	}
	return err
}

func doTools(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	coordinator, err := scan.New(config)
	if err != nil {
		return err
	}
	if err := coordinator.Start(ctx); err != nil {
		return err
	}
	defer coordinator.Shutdown(ctx)

	fmt.Print(ui.Tools(coordinator.Availability()))
	return nil
}

func doReports(_ *cobra.Command, _ []string) error {
	dir := report.Dir(config)
	names, err := report.List(dir)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(filepath.Join(dir, name))
	}
	return nil
}

func doHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	db, err := openHistory(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	rows, err := historyRows(ctx, db)
	if err != nil {
		return err
	}
	fmt.Print(ui.History(rows))
	return nil
}

func historyRows(ctx context.Context, db *sql.DB) ([]store.ScanRow, error) {
	if flagHistoryEmail == "" {
		return store.Recent(ctx, db, flagHistoryLimit)
	}
	email, err := model.ParseEmail(flagHistoryEmail)
	if err != nil {
		return nil, err
	}
	return store.ByEmail(ctx, db, email.String())
}

func doHistoryShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openHistory(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	rep, err := store.Load(ctx, db, args[0])
	if err != nil {
		return err
	}
	raw, err := report.Render(rep, flagHistoryFormat)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(raw)
	return err
}

func doHistoryDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openHistory(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	if err := store.Delete(ctx, db, args[0]); err != nil {
		return err
	}
	fmt.Println("deleted", args[0])
	return nil
}

func doWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	attrs := slog.Group("maildive",
		slog.String("cmd", "watch"),
		slog.Int("pid", os.Getpid()),
	)
	ctx = log.ContextAttrs(ctx, attrs)

	coordinator, err := scan.New(config)
	if err != nil {
		return err
	}
	if err := coordinator.Start(ctx); err != nil {
		return err
	}
	defer coordinator.Shutdown(ctx)

	watcher, err := service.NewWatcher(ctx, config, coordinator)
	if err != nil {
		return err
	}
	if flagWatchNow {
		watcher.Trigger()
	}
	return watcher.Do(ctx)
}

func openHistory(ctx context.Context) (*sql.DB, error) {
	if config.History != nil && config.History.Enabled != nil && !*config.History.Enabled {
		return nil, errors.New("history is disabled in the configuration")
	}
	return store.InitDB(ctx, store.Path(config))
}
