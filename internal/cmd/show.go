package cmd

import (
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/wbrown/img2cell/internal/console"
)

type Show struct {
	Render `embed:""`

	Input     string `arg:"" help:"Image to show" type:"existingfile"`
	TrueColor bool   `help:"Draw every color as 24-bit" env:"IMG2CELL_TRUECOLOR"`
}

// Run is called by Kong when the show command is executed.
func (s *Show) Run(logger *slog.Logger) error {
	if s.MaxRows == 0 {
		if _, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && h > 0 {
			s.MaxRows = h
		}
	}
	_, grid, err := s.convert(s.Input, logger)
	if err != nil {
		return err
	}
	return console.Show(grid, s.TrueColor)
}
