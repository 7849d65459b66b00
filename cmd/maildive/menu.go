package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/maildive/maildive/internal/log"
	"github.com/maildive/maildive/internal/model"
	"github.com/maildive/maildive/internal/service"
	"github.com/maildive/maildive/internal/ui"

	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "menu runs maildive interactively",
	RunE:  doMenu,
}

// doMenu drives the interactive prompt. It keeps one coordinator alive for
// the whole session, so tools are probed once and scans reuse the workers.
func doMenu(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	attrs := slog.Group("maildive",
		slog.String("cmd", "menu"),
		slog.Int("pid", os.Getpid()),
	)
	ctx = log.ContextAttrs(ctx, attrs)

	coordinator, pipeline, err := newScanPipeline(ctx)
	if err != nil {
		return err
	}
	defer coordinator.Shutdown(ctx)
	defer pipeline.Close(ctx)

	fmt.Print(ui.Tools(coordinator.Availability()))

	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(menuPrompt())
		if !in.Scan() {
			fmt.Println()
			return in.Err()
		}
		switch strings.TrimSpace(in.Text()) {
		case "1":
			if err := menuScan(ctx, in, pipeline); err != nil {
				fmt.Println(ui.FailStyle.Render(err.Error()))
			}
		case "2":
			fmt.Print(ui.Tools(coordinator.Availability()))
		case "3":
			if err := doReports(cmd, nil); err != nil {
				fmt.Println(ui.FailStyle.Render(err.Error()))
			}
		case "4", "q", "quit", "exit":
			return nil
		default:
			fmt.Println(ui.MutedStyle.Render("pick an option between 1 and 4"))
		}
	}
}

func menuScan(ctx context.Context, in *bufio.Scanner, pipeline *service.Pipeline) error {
	fmt.Print("address to scan: ")
	if !in.Scan() {
		return in.Err()
	}
	email, err := model.ParseEmail(strings.TrimSpace(in.Text()))
	if err != nil {
		return err
	}
	return scanOne(ctx, pipeline, email)
}

func menuPrompt() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(ui.TitleStyle.Render("maildive"))
	b.WriteString("\n")
	for _, line := range [...][2]string{
		{"1", "scan an address"},
		{"2", "show tool availability"},
		{"3", "list saved reports"},
		{"4", "quit"},
	} {
		fmt.Fprintf(&b, "  %s  %s\n", ui.ValueStyle.Render(line[0]), line[1])
	}
	b.WriteString("> ")
	return b.String()
}

// interactive reports whether stdin is a terminal, the cue for dropping into
// the menu when maildive runs without arguments.
func interactive() bool {
	info, err := os.Stdin.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
