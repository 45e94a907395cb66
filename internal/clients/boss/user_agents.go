package boss

import (
	"math/rand"
	"sync"
	"time"
)

var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.0.0",
}

// UserAgentPool hands out user agents at random, never returning the same one twice in a row
// unless the pool holds a single entry.
type UserAgentPool struct {
	mu     sync.Mutex
	agents []string
	rnd    *rand.Rand
	last   int
}

func NewUserAgentPool(agents []string) *UserAgentPool {
	if len(agents) == 0 {
		agents = DefaultUserAgents
	}
	return &UserAgentPool{
		agents: append([]string(nil), agents...),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		last:   -1,
	}
}

func (p *UserAgentPool) SetRand(rnd *rand.Rand) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rnd = rnd
}

func (p *UserAgentPool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.agents) == 1 {
		return p.agents[0]
	}

	i := p.rnd.Intn(len(p.agents))
	if i == p.last {
		i = (i + 1 + p.rnd.Intn(len(p.agents)-1)) % len(p.agents)
	}
	p.last = i
	return p.agents[i]
}
