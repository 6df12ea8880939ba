package embed

import (
	"time"

	"github.com/solowitluv/miniplayer/internal/domain"
)

// timerGroup owns every deferred action of one controller. Each action
// captures the generation it was scheduled in and does nothing if the group
// has moved on, so a timer that slips past cancelAll is inert.
// Not safe for concurrent use; it lives on the engine loop with its owner.
type timerGroup struct {
	sched domain.Scheduler
	gen   uint64
	next  uint64
	stops map[uint64]func() bool
}

func newTimerGroup(sched domain.Scheduler) *timerGroup {
	return &timerGroup{
		sched: sched,
		stops: make(map[uint64]func() bool),
	}
}

func (g *timerGroup) after(d time.Duration, fn func()) {
	gen := g.gen
	id := g.next
	g.next++
	g.stops[id] = g.sched.AfterFunc(d, func() {
		delete(g.stops, id)
		if gen != g.gen {
			return
		}
		fn()
	})
}

func (g *timerGroup) cancelAll() {
	for id, stop := range g.stops {
		stop()
		delete(g.stops, id)
	}
	g.gen++
}

func (g *timerGroup) pending() int {
	return len(g.stops)
}
