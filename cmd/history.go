/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/allbin/go-rfidclone/internal/config"
	"github.com/allbin/go-rfidclone/internal/journal"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded clone attempts",
	Long: `Show the most recent actions recorded in the journal, newest first.

Every connect, read, write and disconnect is recorded with the state it
started from, the state it ended in and its outcome (ok, locked, timeout,
...). The journal lives in $XDG_STATE_HOME/rfidclone/journal.db unless
--journal or RFIDCLONE_JOURNAL says otherwise.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		if cfg.Journal == "" {
			return errors.New("journal is disabled")
		}
		store, err := journal.Open(cfg.Journal)
		if err != nil {
			return err
		}
		defer store.Close()

		rows, err := store.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Println("No attempts recorded")
			return nil
		}
		renderHistory(rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "number of entries to show, 0 for all")
}

func renderHistory(rows []journal.Row) {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("240"))
	failStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	format := "%-19s %-10s %-14s %-33s %-10s %-16s %s"
	fmt.Println(headerStyle.Render(fmt.Sprintf(format, "Time", "Action", "Port", "Transition", "UID", "Outcome", "Message")))
	for _, r := range rows {
		line := fmt.Sprintf(format,
			r.At.Local().Format("2006-01-02 15:04:05"),
			r.Action,
			r.Port,
			r.From+" → "+r.To,
			r.UID,
			r.Outcome,
			r.Message)
		if r.Outcome != "ok" {
			line = failStyle.Render(line)
		}
		fmt.Println(line)
	}
}
