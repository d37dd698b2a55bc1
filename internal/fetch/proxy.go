package fetch

import (
	"math/rand"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// proxyRefreshInterval is how often the pool re-reads its source list.
const proxyRefreshInterval = 30 * time.Minute

// ProxiesEnv is the environment variable holding a comma-separated list of
// outbound proxy URLs.
const ProxiesEnv = "PROXIES"

// ProxyPool is a weighted-random pool of outbound proxies. The direct
// (no-proxy) entry is always present at the highest weight; listed proxies
// decay linearly from most-recently-added to least. The pool refreshes from
// its source every 30 minutes.
type ProxyPool struct {
	source func() []string
	rng    *rand.Rand

	mu        sync.Mutex
	entries   []string // entries[0] is always "" (direct)
	refreshed time.Time
}

// NewProxyPool creates a pool fed from the PROXIES environment variable.
func NewProxyPool() *ProxyPool {
	return NewProxyPoolFromSource(func() []string {
		raw := os.Getenv(ProxiesEnv)
		if raw == "" {
			return nil
		}
		var out []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	})
}

// NewProxyPoolFromSource creates a pool with a custom entry source.
func NewProxyPoolFromSource(source func() []string) *ProxyPool {
	p := &ProxyPool{
		source: source,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	p.refresh()
	return p
}

func (p *ProxyPool) refresh() {
	p.entries = append([]string{""}, p.source()...)
	p.refreshed = time.Now()
}

// Pick returns a proxy URL for one request, or nil for a direct connection.
// The direct entry carries weight len(entries); a listed proxy at index i
// carries weight i, so the direct entry always wins the most rolls and the
// most-recently-added proxy outranks older ones.
func (p *ProxyPool) Pick() (*url.URL, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if time.Since(p.refreshed) > proxyRefreshInterval {
		p.refresh()
	}

	n := len(p.entries)
	total := n + n*(n-1)/2
	roll := p.rng.Intn(total)
	for i, entry := range p.entries {
		if i == 0 {
			roll -= n
		} else {
			roll -= i
		}
		if roll < 0 {
			if entry == "" {
				return nil, nil
			}
			return url.Parse(entry)
		}
	}
	return nil, nil // unreachable
}

// Entries returns a copy of the current pool contents, direct entry first.
func (p *ProxyPool) Entries() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.entries))
	copy(out, p.entries)
	return out
}
