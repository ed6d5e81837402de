package main

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/vtio/terminal"
)

var colorsWidth int

var colorsCmd = &cobra.Command{
	Use:   "colors",
	Short: "Render truecolor ramps and the console palette",
	RunE: func(cmd *cobra.Command, args []string) error {
		term, err := openTerminal()
		if err != nil {
			return err
		}
		defer term.Close()

		return term.WithSession(func() error {
			return runColors(term, colorsWidth)
		})
	},
}

func init() {
	colorsCmd.Flags().IntVar(&colorsWidth, "width", 64, "cells per ramp")
}

// runColors writes a hue ramp, a gray ramp and the 16-color palette
// Runs of equal color are emitted without repeated SGR sequences
func runColors(term terminal.Console, width int) error {
	if width < 2 {
		width = 2
	}
	for i := range width {
		c := colorful.Hsv(360*float64(i)/float64(width), 0.9, 0.95)
		r, g, b := c.RGB255()
		if err := term.WriteChar(' ', terminal.ColorIgnored, terminal.RGB(r, g, b)); err != nil {
			return err
		}
	}
	term.WriteString("\r\n", terminal.ColorIgnored, terminal.Black)

	for i := range width {
		v := uint8(255 * i / (width - 1))
		if err := term.WriteChar(' ', terminal.ColorIgnored, terminal.RGB(v, v, v)); err != nil {
			return err
		}
	}
	term.WriteString("\r\n", terminal.ColorIgnored, terminal.Black)

	for i, c := range terminal.ConsolePalette {
		if err := term.WriteString("  ", terminal.ColorIgnored, c); err != nil {
			return err
		}
		if i == 7 {
			term.WriteString("\r\n", terminal.ColorIgnored, terminal.Black)
		}
	}
	return term.WriteString("\r\n", terminal.White, terminal.Black)
}
