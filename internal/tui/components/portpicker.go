package components

import (
	"fmt"

	"github.com/allbin/go-rfidclone/channel"
	"github.com/allbin/go-rfidclone/internal/tui/colors"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
)

const (
	columnKeyPath   = "path"
	columnKeyReader = "reader"
	columnKeyDesc   = "desc"
	columnKeyUSB    = "usb"
)

// PortPicker is a selectable table of candidate ports
type PortPicker struct {
	table table.Model
	ports []channel.PortInfo
}

func NewPortPicker() *PortPicker {
	columns := []table.Column{
		table.NewColumn(columnKeyReader, " ", 2),
		table.NewColumn(columnKeyPath, "Port", 16),
		table.NewColumn(columnKeyDesc, "Description", 28),
		table.NewColumn(columnKeyUSB, "USB", 11),
	}
	t := table.New(columns).
		Focused(true).
		WithPageSize(5).
		BorderRounded().
		HeaderStyle(lipgloss.NewStyle().Bold(true).Foreground(colors.Text)).
		HighlightStyle(lipgloss.NewStyle().Foreground(colors.Text).Background(colors.Surface1)).
		WithBaseStyle(lipgloss.NewStyle().BorderForeground(colors.Surface2).Align(lipgloss.Left))
	return &PortPicker{table: t}
}

// SetPorts replaces the rows and highlights the detected reader, if any
func (p *PortPicker) SetPorts(ports []channel.PortInfo) {
	p.ports = ports
	rows := make([]table.Row, 0, len(ports))
	highlight := 0
	found := false
	for i, info := range ports {
		mark := ""
		if info.Controller {
			mark = "★"
			if !found {
				highlight, found = i, true
			}
		}
		usb := ""
		if info.IsUSB {
			usb = fmt.Sprintf("%s:%s", info.VendorID, info.ProductID)
		}
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyReader: table.NewStyledCell(mark, lipgloss.NewStyle().Foreground(colors.Yellow)),
			columnKeyPath:   info.Path,
			columnKeyDesc:   info.Description,
			columnKeyUSB:    usb,
		}))
	}
	p.table = p.table.WithRows(rows).WithHighlightedRow(highlight)
}

// Ports returns the listed ports
func (p *PortPicker) Ports() []channel.PortInfo {
	return p.ports
}

// Selected returns the highlighted port path, or "" when the list is empty
func (p *PortPicker) Selected() string {
	if len(p.ports) == 0 {
		return ""
	}
	path, _ := p.table.HighlightedRow().Data[columnKeyPath].(string)
	return path
}

func (p *PortPicker) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return cmd
}

func (p *PortPicker) View() string {
	if len(p.ports) == 0 {
		return lipgloss.NewStyle().Foreground(colors.Muted).Padding(1, 2).Render("No serial ports found, press R to refresh")
	}
	return p.table.View()
}
