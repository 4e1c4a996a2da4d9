/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/allbin/go-rfidclone/channel"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidate serial ports",
	Long: `List the serial ports a reader board could be attached to.

This command scans for communication-capable serial devices including:
- USB serial adapters (ttyUSB*)
- USB CDC/ACM devices (ttyACM*)
- Standard serial ports (ttyS*)
- ARM/Raspberry Pi ports (ttyAMA*)

Ports whose USB identity matches a known reader bridge (Arduino, CH340,
FTDI, CP210x) are marked with ★. --detect prints only that port.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")
		detect, _ := cmd.Flags().GetBool("detect")

		infos, err := channel.NewManager().Describe()
		if err != nil {
			return fmt.Errorf("listing ports: %w", err)
		}

		if detect {
			info, ok := channel.DetectController(infos)
			if !ok {
				return errNoReader
			}
			fmt.Println(info.Path)
			return nil
		}

		filtered := filterPorts(infos, filterType)
		if len(filtered) == 0 {
			if filterType != "" {
				fmt.Printf("No serial ports found matching filter: %s\n", filterType)
			} else {
				fmt.Println("No serial ports found")
			}
			return nil
		}

		if tableFormat {
			renderTable(filtered)
		} else {
			renderSimple(filtered)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, reader, standard, arm, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
	listCmd.Flags().BoolP("detect", "d", false, "Print only the detected reader board")
}

// filterPorts filters the port list based on the specified filter type
func filterPorts(infos []channel.PortInfo, filterType string) []channel.PortInfo {
	if filterType == "" || filterType == "all" {
		return infos
	}

	var filtered []channel.PortInfo
	for _, info := range infos {
		name := strings.ToLower(filepath.Base(info.Path))
		switch strings.ToLower(filterType) {
		case "usb":
			if info.IsUSB || strings.HasPrefix(name, "ttyusb") || strings.HasPrefix(name, "ttyacm") {
				filtered = append(filtered, info)
			}
		case "reader":
			if info.Controller {
				filtered = append(filtered, info)
			}
		case "standard":
			if strings.HasPrefix(name, "ttys") {
				filtered = append(filtered, info)
			}
		case "arm":
			if strings.HasPrefix(name, "ttyama") {
				filtered = append(filtered, info)
			}
		}
	}
	return filtered
}

// renderTable renders the port list in a styled static table format
func renderTable(infos []channel.PortInfo) {
	fmt.Printf("Found %d serial port(s):\n\n", len(infos))

	markWidth := 2
	portWidth := 15
	typeWidth := 16
	usbWidth := 11
	descWidth := 30

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("240")).
		PaddingBottom(1)

	cellStyle := lipgloss.NewStyle().
		PaddingRight(2)

	readerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("220"))

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s",
		markWidth, "",
		portWidth, "Port",
		typeWidth, "Type",
		usbWidth, "USB",
		descWidth, "Description")
	fmt.Println(headerStyle.Render(header))

	for _, info := range infos {
		usb := ""
		if info.IsUSB {
			usb = info.VendorID + ":" + info.ProductID
		}
		row := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s",
			markWidth, "",
			portWidth, filepath.Base(info.Path),
			typeWidth, getPortType(filepath.Base(info.Path)),
			usbWidth, usb,
			descWidth, info.Description)
		if info.Controller {
			fmt.Println(readerStyle.Render("★") + cellStyle.Render(row[1:]))
			continue
		}
		fmt.Println(cellStyle.Render(row))
	}
}

// renderSimple renders the port list in simple text format
func renderSimple(infos []channel.PortInfo) {
	for _, info := range infos {
		if info.Controller {
			fmt.Printf("%s\t(reader)\n", info.Path)
			continue
		}
		fmt.Println(info.Path)
	}
}

// getPortType returns a more specific type classification for the port
func getPortType(name string) string {
	name = strings.ToLower(name)
	switch {
	case strings.HasPrefix(name, "ttyusb"):
		return "USB Serial"
	case strings.HasPrefix(name, "ttyacm"):
		return "USB CDC/ACM"
	case strings.HasPrefix(name, "ttyama"):
		return "ARM Serial"
	case strings.HasPrefix(name, "ttyths"):
		return "Tegra Serial"
	case strings.HasPrefix(name, "ttys"):
		return "Standard Serial"
	default:
		return "Serial Port"
	}
}
