package view

import (
	"sync"

	"github.com/shahar-caura/plantid/internal/render"
)

// Snapshot is an immutable copy of the visible state.
type Snapshot struct {
	PreviewVisible bool        `json:"preview_visible"`
	PreviewURL     string      `json:"-"`
	Loading        bool        `json:"loading"`
	ResultVisible  bool        `json:"result_visible"`
	Result         render.View `json:"-"`
	Hover          bool        `json:"hover"`
	Version        uint64      `json:"version"`
}

// Notifier receives every state change.
type Notifier interface {
	Changed(Snapshot)
}

// Panes owns the preview, loading and result panes. Each pane is either
// visible or hidden; the result pane is hidden whenever the preview changes
// and whenever loading begins.
type Panes struct {
	mu       sync.Mutex
	state    Snapshot
	notifier Notifier
}

// New returns Panes with everything hidden. notifier may be nil.
func New(notifier Notifier) *Panes {
	return &Panes{notifier: notifier}
}

// ShowPreview displays a new preview and clears any prior result.
func (p *Panes) ShowPreview(dataURL string) {
	p.update(func(s *Snapshot) {
		s.PreviewVisible = true
		s.PreviewURL = dataURL
		s.ResultVisible = false
		s.Result = render.View{}
	})
}

// HidePreview hides the preview and result panes.
func (p *Panes) HidePreview() {
	p.update(func(s *Snapshot) {
		s.PreviewVisible = false
		s.PreviewURL = ""
		s.ResultVisible = false
		s.Result = render.View{}
	})
}

// BeginLoading shows the loading indicator and hides the result pane.
func (p *Panes) BeginLoading() {
	p.update(func(s *Snapshot) {
		s.Loading = true
		s.ResultVisible = false
	})
}

// EndLoading hides the loading indicator.
func (p *Panes) EndLoading() {
	p.update(func(s *Snapshot) {
		s.Loading = false
	})
}

// ShowResult replaces the result pane content and makes it visible. Loading
// and result are never shown together, so the loading indicator goes too.
func (p *Panes) ShowResult(v render.View) {
	p.update(func(s *Snapshot) {
		s.Result = v
		s.ResultVisible = true
		s.Loading = false
	})
}

// SetHover toggles the drop zone hover state.
func (p *Panes) SetHover(on bool) {
	p.update(func(s *Snapshot) {
		s.Hover = on
	})
}

// Snapshot returns the current state.
func (p *Panes) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Panes) update(fn func(*Snapshot)) {
	p.mu.Lock()
	fn(&p.state)
	p.state.Version++
	snap := p.state
	p.mu.Unlock()

	if p.notifier != nil {
		p.notifier.Changed(snap)
	}
}
