package keys

import "github.com/charmbracelet/bubbles/key"

// StudioKeys are the bindings of the clone studio
type StudioKeys struct {
	Up         key.Binding
	Down       key.Binding
	Connect    key.Binding
	Disconnect key.Binding
	Read       key.Binding
	Write      key.Binding
	Refresh    key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func NewStudioKeys() StudioKeys {
	return StudioKeys{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Connect: key.NewBinding(
			key.WithKeys("c", "enter"),
			key.WithHelp("c/enter", "connect"),
		),
		Disconnect: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "disconnect"),
		),
		Read: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "read source"),
		),
		Write: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "write target"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R", "ctrl+r"),
			key.WithHelp("R", "refresh ports"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/esc", "cancel"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
	}
}

func (k StudioKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Connect, k.Read, k.Write, k.Help, k.Quit}
}

func (k StudioKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Refresh},
		{k.Connect, k.Disconnect, k.Read, k.Write},
		{k.Confirm, k.Cancel, k.Help, k.Quit},
	}
}
