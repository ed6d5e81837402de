package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/vtio/config"
	"github.com/lixenwraith/vtio/logging"
	"github.com/lixenwraith/vtio/terminal"
)

var (
	cfgFile  string
	logFile  string
	logLevel string

	cfg       config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "vtio",
	Short: "Exercise the vtio terminal engine",
	Long: `vtio drives the console directly with ANSI/VT sequences.

Each subcommand exercises one part of the engine: key decoding, the line
editor, color diffing and cursor control.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if cmd.Flags().Changed("log-file") {
			cfg.Log.File = logFile
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = logLevel
		}
		logger, logCloser, err = logging.Init(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to open log: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/vtio/vtio.toml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(keysCmd, readlineCmd, colorsCmd, cursorCmd)
}

// openTerminal creates and initializes the process terminal
// The caller must Close it
func openTerminal() (*terminal.Terminal, error) {
	opts := cfg.TerminalOptions()
	opts.Logger = logger
	term, err := terminal.New(opts)
	if err != nil {
		return nil, fmt.Errorf("open terminal: %w", err)
	}
	if err := term.Init(); err != nil {
		term.Close()
		return nil, fmt.Errorf("init terminal: %w", err)
	}
	return term, nil
}

func main() {
	// Panic recovery: reset the terminal even if a command crashes
	defer func() {
		if r := recover(); r != nil {
			terminal.EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\r\n\x1b[31mVTIO CRASHED: %v\x1b[0m\r\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
