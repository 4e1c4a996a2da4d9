/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"github.com/allbin/go-rfidclone/internal/tui/components"
	"github.com/allbin/go-rfidclone/internal/tui/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// studioCmd represents the studio command
var studioCmd = &cobra.Command{
	Use:   "studio",
	Short: "Interactive clone workflow",
	Long: `Open a terminal interface for the clone workflow.

Pick the reader port from the table (the detected reader board is
preselected), connect, read the source tag and write its UID to a blank.
Writes ask for confirmation so there is time to swap tags.

Keys:
  c/enter  connect to the highlighted port
  r        read source tag
  w        write target tag
  d        disconnect
  R        refresh the port list
  ?        all key bindings

Logs go to --log-file when set and are discarded otherwise.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(true)
		if err != nil {
			return err
		}
		defer s.Close()

		line := &components.LineInfo{
			BaudRate: s.cfg.BaudRate,
			DataBits: s.cfg.DataBits,
			StopBits: s.cfg.StopBits,
			Parity:   s.cfg.Parity,
		}
		m := models.NewStudio(cmd.Context(), s.ctrl, s.manager, line)

		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(studioCmd)
}
