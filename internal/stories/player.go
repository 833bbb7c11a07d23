package stories

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nukesul/boody/internal/domain"
)

// DefaultAdvanceInterval matches the storefront story progress timer.
const DefaultAdvanceInterval = 5 * time.Second

// Player drives the story viewer: a scheduled auto-advance that lives
// exactly as long as the viewer is open. Closing the viewer or
// navigating manually cancels the pending advance, so no timer ever
// leaks past Close.
type Player struct {
	interval time.Duration

	mu      sync.Mutex
	stories []domain.Story
	index   int
	open    bool
	stop    chan struct{}
	kick    chan struct{}

	onAdvance func(index int)
}

func NewPlayer(interval time.Duration, onAdvance func(index int)) *Player {
	if interval <= 0 {
		interval = DefaultAdvanceInterval
	}
	return &Player{interval: interval, onAdvance: onAdvance}
}

// Open starts the viewer at the first story and schedules the
// auto-advance. Opening an already open player restarts it.
func (p *Player) Open(stories []domain.Story) {
	p.mu.Lock()
	if p.open {
		close(p.stop)
	}
	p.stories = stories
	p.index = 0
	p.open = len(stories) > 0
	if !p.open {
		p.mu.Unlock()
		return
	}
	p.stop = make(chan struct{})
	p.kick = make(chan struct{}, 1)
	stop, kick := p.stop, p.kick
	p.mu.Unlock()

	go p.loop(stop, kick)
}

func (p *Player) loop(stop, kick chan struct{}) {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()
	for {
		select {
		case <-stop:
			return
		case <-kick:
			// manual navigation restarts the countdown
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(p.interval)
		case <-timer.C:
			if !p.advance(1) {
				return
			}
			timer.Reset(p.interval)
		}
	}
}

// advance moves the cursor. Returns false when the player closed
// because the last story finished.
func (p *Player) advance(delta int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return false
	}
	next := p.index + delta
	if next < 0 {
		next = 0
	}
	if next >= len(p.stories) {
		p.closeLocked()
		return false
	}
	p.index = next
	if p.onAdvance != nil {
		p.onAdvance(next)
	}
	return true
}

// Next advances manually and restarts the timer.
func (p *Player) Next() {
	if p.advance(1) {
		p.restartTimer()
	}
}

// Prev steps back manually and restarts the timer.
func (p *Player) Prev() {
	if p.advance(-1) {
		p.restartTimer()
	}
}

func (p *Player) restartTimer() {
	p.mu.Lock()
	kick, open := p.kick, p.open
	p.mu.Unlock()
	if !open {
		return
	}
	select {
	case kick <- struct{}{}:
	default:
	}
}

// Current returns the cursor and whether the viewer is open.
func (p *Player) Current() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index, p.open
}

// Close shuts the viewer and cancels the scheduled advance.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

func (p *Player) closeLocked() {
	if !p.open {
		return
	}
	p.open = false
	close(p.stop)
	zap.L().Debug("story viewer closed", zap.Int("index", p.index))
}
