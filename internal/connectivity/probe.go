package connectivity

import (
	"context"
	"net/http"
	"time"
)

// Prober drives a Monitor from periodic HTTP reachability checks against an
// upstream endpoint.
type Prober struct {
	monitor  *Monitor
	url      string
	interval time.Duration
	client   *http.Client
}

// NewProber builds a prober that checks url every interval.
func NewProber(monitor *Monitor, url string, interval time.Duration) *Prober {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Prober{
		monitor:  monitor,
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Run probes until the context is cancelled. An immediate probe happens on
// start so the monitor reflects reality before the first tick.
func (p *Prober) Run(ctx context.Context) {
	p.probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.probe(ctx)
		}
	}
}

func (p *Prober) probe(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		p.monitor.SetOnline(false)
		return
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.monitor.SetOnline(false)
		return
	}
	resp.Body.Close()
	// Any HTTP response proves the network path works; auth errors from the
	// upstream still mean we are online.
	p.monitor.SetOnline(true)
}
