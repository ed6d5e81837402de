package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/vtio/config"
	"github.com/lixenwraith/vtio/terminal"
)

var (
	keysEcho bool
	keysQuit string
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Print decoded key events until the quit key or Ctrl+D",
	Example: `  # Show what each keypress decodes to:
  vtio keys

  # Also echo keys the way a cooked terminal would:
  vtio keys --echo

  # Quit on Escape instead of q (input.quit_key in the config file):
  vtio keys --quit escape`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("quit") {
			return nil
		}
		return cfg.Input.QuitKey.UnmarshalText([]byte(keysQuit))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		term, err := openTerminal()
		if err != nil {
			return err
		}
		defer term.Close()
		return runKeys(term, keysEcho, cfg.Input.QuitKey)
	},
}

func init() {
	keysCmd.Flags().BoolVar(&keysEcho, "echo", false, "echo keys before describing them")
	keysCmd.Flags().StringVar(&keysQuit, "quit", "", "quit key binding, e.g. q, escape, ctrl+x (default from config)")
}

// runKeys describes each key on its own line until quit or Ctrl+D
func runKeys(term terminal.Console, echo bool, quit config.Key) error {
	label := terminal.RGB(140, 140, 160)
	value := terminal.RGB(100, 255, 100)

	name, _ := quit.MarshalText()
	banner := fmt.Sprintf("press keys; %s or Ctrl+D quits\r\n", name)
	if err := term.WriteString(banner, label, terminal.ColorIgnored); err != nil {
		return err
	}
	for {
		ev, err := term.ReadKey(!echo)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if quit.Matches(ev) || ev.Key == terminal.KeyCharacter && ev.Control && !ev.Alt && ev.Rune == 'd' {
			return nil
		}

		if echo {
			term.WriteString("  ", label, terminal.ColorIgnored)
		}
		if err := term.WriteString("key ", label, terminal.ColorIgnored); err != nil {
			return err
		}
		line := fmt.Sprintf("%-24s rune=%U\r\n", ev.String(), ev.Rune)
		if err := term.WriteString(line, value, terminal.ColorIgnored); err != nil {
			return err
		}
	}
}
