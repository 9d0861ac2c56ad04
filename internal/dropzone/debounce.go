package dropzone

import "time"

type settleEvent struct {
	name string
	gen  uint64
}

type pendingFile struct {
	timer *time.Timer
	gen   uint64
}

// debouncer tracks files that are still being written. Every touch re-arms a
// file under a new generation, so a timer that already fired before the
// re-arm cannot settle the file early. Not safe for concurrent use; only the
// watch loop calls it.
type debouncer struct {
	settle  time.Duration
	events  chan settleEvent
	done    <-chan struct{}
	gen     uint64
	pending map[string]*pendingFile
}

func newDebouncer(settle time.Duration, done <-chan struct{}) *debouncer {
	return &debouncer{
		settle:  settle,
		events:  make(chan settleEvent),
		done:    done,
		pending: make(map[string]*pendingFile),
	}
}

// touch (re)starts the settle timer for name and reports whether name was
// not already pending.
func (d *debouncer) touch(name string) bool {
	p, ok := d.pending[name]
	if ok {
		p.timer.Stop()
	} else {
		p = &pendingFile{}
		d.pending[name] = p
	}

	d.gen++
	gen := d.gen
	p.gen = gen
	p.timer = time.AfterFunc(d.settle, func() {
		select {
		case d.events <- settleEvent{name: name, gen: gen}:
		case <-d.done:
		}
	})
	return !ok
}

// cancel forgets name and reports whether it was pending.
func (d *debouncer) cancel(name string) bool {
	p, ok := d.pending[name]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(d.pending, name)
	return true
}

// settled reports whether ev is the latest timer for its file. If so the
// file is forgotten and ready to drop.
func (d *debouncer) settled(ev settleEvent) bool {
	p, ok := d.pending[ev.name]
	if !ok || p.gen != ev.gen {
		return false
	}
	delete(d.pending, ev.name)
	return true
}

func (d *debouncer) empty() bool { return len(d.pending) == 0 }

func (d *debouncer) stop() {
	for _, p := range d.pending {
		p.timer.Stop()
	}
}
