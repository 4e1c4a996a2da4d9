package channeltest

import (
	"fmt"
	"sync"

	"github.com/allbin/go-rfidclone/channel"
)

// Opener hands out scripted ports by path
type Opener struct {
	mu      sync.Mutex
	ports   map[string]*Port
	opened  []string
	configs []channel.Config
}

// NewOpener returns an Opener that knows no paths
func NewOpener() *Opener {
	return &Opener{ports: make(map[string]*Port)}
}

// Attach makes path openable, backed by p
func (o *Opener) Attach(path string, p *Port) *Opener {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ports[path] = p
	return o
}

// Open implements channel.OpenFunc. Unknown paths fail with ErrDeviceNotFound.
func (o *Opener) Open(path string, opts ...channel.Option) (channel.Port, error) {
	config := channel.DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	p, ok := o.ports[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", channel.ErrDeviceNotFound, path)
	}
	p.reopen()
	o.opened = append(o.opened, path)
	o.configs = append(o.configs, config)
	return p, nil
}

// Opened returns every path successfully opened, in order
func (o *Opener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

// Configs returns the line settings of every successful open
func (o *Opener) Configs() []channel.Config {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]channel.Config(nil), o.configs...)
}

// NewManager returns a Manager over o with no settle delay that lists the
// given paths as candidates.
func NewManager(o *Opener, paths ...string) *channel.Manager {
	return channel.NewManager(
		channel.WithOpener(o.Open),
		channel.WithLister(func() ([]string, error) {
			return append([]string(nil), paths...), nil
		}),
		channel.WithDetails(nil),
		channel.WithSettleDelay(0),
	)
}
