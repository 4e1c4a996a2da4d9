/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"

	rfidclone "github.com/allbin/go-rfidclone"
	"github.com/charmbracelet/lipgloss"
)

var (
	okMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true).Render("✓")
	failMark = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Render("✗")
	stateTag = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Faint(true)
)

// printSteps returns an observer that prints one line per action to w
func printSteps(w io.Writer) func(rfidclone.Event) {
	return func(ev rfidclone.Event) {
		mark := okMark
		if !ev.Result.OK() {
			mark = failMark
		}
		fmt.Fprintf(w, "%s %s %s\n", mark, ev.Result.Log, stateTag.Render("["+ev.To.Phase.String()+"]"))
	}
}
