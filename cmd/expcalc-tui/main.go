package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"expcalc/internal/cli"
	"expcalc/internal/log"
	"expcalc/internal/tui"
	"expcalc/internal/widget"
)

// debugLogFile receives logs when LOG_LEVEL=debug; the terminal itself
// belongs to the program.
const debugLogFile = "expcalc-tui.log"

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()

	var out io.Writer = io.Discard
	if strings.EqualFold(cfg.LogLevel, "debug") {
		f, err := tea.LogToFile(debugLogFile, "")
		if err != nil {
			fmt.Fprintln(os.Stderr, "open log file:", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	logger := cli.SetupLogger(cfg, out)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	opts := widget.DefaultOptions()
	opts.Locale = cfg.Locale
	opts.Currency = cfg.Currency
	opts.Logger = logger

	p := tea.NewProgram(tui.New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		logger.Error("TUI error", log.FieldError, err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
