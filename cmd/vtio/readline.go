package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/vtio/terminal"
)

var readlineErase bool

var readlineCmd = &cobra.Command{
	Use:   "readline",
	Short: "Edit lines with the cooked line editor until Ctrl+D",
	Example: `  # Read lines, printing each back:
  vtio readline

  # Erase each line from the screen when Enter is pressed:
  vtio readline --erase`,
	RunE: func(cmd *cobra.Command, args []string) error {
		term, err := openTerminal()
		if err != nil {
			return err
		}
		defer term.Close()

		erase := cfg.Line.EraseOnExit
		if cmd.Flags().Changed("erase") {
			erase = readlineErase
		}
		return runReadline(term, erase)
	},
}

func init() {
	readlineCmd.Flags().BoolVar(&readlineErase, "erase", false, "erase the echoed line on Enter")
}

// runReadline prompts until end of input, printing each line in color
func runReadline(term terminal.Console, erase bool) error {
	prompt := terminal.RGB(100, 180, 255)
	result := terminal.RGB(255, 200, 80)

	for {
		if err := term.WriteString("> ", prompt, terminal.ColorIgnored); err != nil {
			return err
		}
		line, err := term.ReadLine(erase)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return term.WriteString("\r\n", terminal.ColorIgnored, terminal.ColorIgnored)
			}
			return err
		}
		if erase {
			// The line is gone; the prompt is still on screen
			term.WriteString("\r\n", terminal.ColorIgnored, terminal.ColorIgnored)
		}
		if err := term.WriteString("read: "+line+"\r\n", result, terminal.ColorIgnored); err != nil {
			return err
		}
	}
}
