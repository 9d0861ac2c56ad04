package view

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahar-caura/plantid/internal/render"
)

type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recorder) Changed(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func TestShowPreview_ClearsResult(t *testing.T) {
	p := New(nil)
	p.ShowResult(render.View{HTML: "<p>old</p>"})
	require.True(t, p.Snapshot().ResultVisible)

	p.ShowPreview("data:image/png;base64,AAAA")

	s := p.Snapshot()
	assert.True(t, s.PreviewVisible)
	assert.Equal(t, "data:image/png;base64,AAAA", s.PreviewURL)
	assert.False(t, s.ResultVisible)
	assert.Empty(t, s.Result.HTML)
}

func TestHidePreview_HidesEverything(t *testing.T) {
	p := New(nil)
	p.ShowPreview("data:x")
	p.ShowResult(render.View{HTML: "<p>r</p>"})

	p.HidePreview()

	s := p.Snapshot()
	assert.False(t, s.PreviewVisible)
	assert.Empty(t, s.PreviewURL)
	assert.False(t, s.ResultVisible)
	assert.Empty(t, s.Result.HTML)
}

func TestLoading_HidesResult(t *testing.T) {
	p := New(nil)
	p.ShowResult(render.View{HTML: "<p>r</p>"})

	p.BeginLoading()
	s := p.Snapshot()
	assert.True(t, s.Loading)
	assert.False(t, s.ResultVisible)

	p.EndLoading()
	assert.False(t, p.Snapshot().Loading)
}

func TestShowResult_HidesLoading(t *testing.T) {
	p := New(nil)
	p.BeginLoading()

	p.ShowResult(render.View{HTML: "<p>r</p>"})

	s := p.Snapshot()
	assert.True(t, s.ResultVisible)
	assert.False(t, s.Loading)
}

func TestNotifier_ReceivesEveryChange(t *testing.T) {
	rec := &recorder{}
	p := New(rec)

	p.ShowPreview("data:x")
	p.SetHover(true)
	p.SetHover(false)

	require.Len(t, rec.snaps, 3)
	assert.Equal(t, uint64(1), rec.snaps[0].Version)
	assert.True(t, rec.snaps[1].Hover)
	assert.False(t, rec.snaps[2].Hover)
	assert.Equal(t, uint64(3), rec.snaps[2].Version)
}
