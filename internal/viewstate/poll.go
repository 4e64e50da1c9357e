package viewstate

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// poller schedules log refresh ticks until it is stopped
type poller struct {
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	once     sync.Once
}

func newPoller(interval time.Duration) *poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &poller{interval: interval, ctx: ctx, cancel: cancel}
}

// tick waits one interval and yields a pollTickMsg, or nothing once stopped
func (p *poller) tick() tea.Cmd {
	ctx, interval := p.ctx, p.interval
	return func() tea.Msg {
		t := time.NewTimer(interval)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			return pollTickMsg{}
		}
	}
}

func (p *poller) stop() {
	p.once.Do(p.cancel)
}

func (p *poller) stopped() bool {
	return p.ctx.Err() != nil
}
