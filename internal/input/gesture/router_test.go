package gesture

import (
	"testing"
	"time"

	"github.com/dshills/swipepane/internal/pager"
)

const testWidth = 300

func newTestRouter(t *testing.T, pageCount, index int) *Router {
	t.Helper()
	e, err := pager.New(pageCount, pager.DefaultParams(), pager.WithIndex(index))
	if err != nil {
		t.Fatalf("pager.New() error = %v", err)
	}
	r := NewRouter(e)
	r.SetPageWidth(testWidth)
	return r
}

func TestRouterDragAdvances(t *testing.T) {
	r := newTestRouter(t, 3, 1)
	d := NewDragNormalizer(DefaultDragMinDistance)
	now := time.Unix(0, 0)

	deliver := func(ev PointerEvent) Result {
		now = now.Add(10 * time.Millisecond)
		s, ok := d.Normalize(ev)
		if !ok {
			return Result{}
		}
		return r.Deliver(s, now)
	}

	deliver(PointerEvent{X: 200, Down: true})
	res := deliver(PointerEvent{X: 196, Down: true})
	if !res.Began {
		t.Fatal("drag did not open a session")
	}
	for x := 176.0; x >= 116; x -= 20 {
		res = deliver(PointerEvent{X: x, Down: true})
	}
	if res.Offset != -84 {
		t.Fatalf("Offset = %v, want -84", res.Offset)
	}

	res = deliver(PointerEvent{X: 116, Down: false})
	if !res.Committed || !res.Changed {
		t.Errorf("release = %+v, want committed and changed", res)
	}
	if got := r.Engine().Index(); got != 2 {
		t.Errorf("Index() = %d, want 2", got)
	}
	if res.Offset != 0 {
		t.Errorf("Offset after commit = %v, want 0", res.Offset)
	}
}

func TestRouterDragResidualCounts(t *testing.T) {
	r := newTestRouter(t, 3, 1)
	now := time.Unix(0, 0)

	r.Deliver(Sample{Source: pager.SourceDrag, Phase: PhaseBegin, Delta: -50}, now)
	res := r.Deliver(Sample{Source: pager.SourceDrag, Phase: PhaseEnd, Delta: -15}, now)

	if !res.Changed {
		t.Errorf("end with residual crossing the threshold = %+v, want changed", res)
	}
}

func TestRouterScrollWithMomentum(t *testing.T) {
	r := newTestRouter(t, 3, 1)
	n := NewScrollNormalizer(8)
	now := time.Unix(0, 0)

	deliver := func(ev ScrollEvent) Result {
		now = now.Add(16 * time.Millisecond)
		s, ok := n.Normalize(ev)
		if !ok {
			return Result{}
		}
		return r.Deliver(s, now)
	}

	res := deliver(ScrollEvent{DeltaX: -1, Precise: true, Phase: ScrollBegan})
	if !res.Began {
		t.Fatal("scroll did not open a session")
	}
	deliver(ScrollEvent{DeltaX: -4, Precise: true, Phase: ScrollChanged})
	res = deliver(ScrollEvent{DeltaX: -4, Precise: true, Phase: ScrollChanged})
	if res.Offset != -72 {
		t.Fatalf("Offset = %v, want -72", res.Offset)
	}

	res = deliver(ScrollEvent{Precise: true, Phase: ScrollEnded})
	if !res.Committed || !res.Changed {
		t.Fatalf("phase end = %+v, want committed and changed", res)
	}

	// Momentum continues after the commit: it must neither open a session
	// nor move the pager again.
	for range 5 {
		res = deliver(ScrollEvent{DeltaX: -3, Precise: true, Momentum: ScrollChanged})
		if res.Began || r.Engine().Active() {
			t.Fatal("momentum opened a session")
		}
	}
	res = deliver(ScrollEvent{Precise: true, Momentum: ScrollEnded})
	if res.Committed || res.Changed {
		t.Errorf("momentum end = %+v, want ignored", res)
	}

	if got := r.Engine().Index(); got != 2 {
		t.Errorf("Index() = %d, want 2", got)
	}
	if got := r.Engine().Metrics().DuplicateEnds; got != 1 {
		t.Errorf("DuplicateEnds = %d, want 1", got)
	}
}

func TestRouterChangeOpensSession(t *testing.T) {
	r := newTestRouter(t, 3, 1)

	res := r.Deliver(Sample{Source: pager.SourceScroll, Phase: PhaseChange, Delta: -40}, time.Unix(0, 0))
	if !res.Began || res.Offset != -40 {
		t.Errorf("change without begin = %+v, want began with offset -40", res)
	}
}

func TestRouterMomentumNeverOpens(t *testing.T) {
	r := newTestRouter(t, 3, 1)

	res := r.Deliver(Sample{Source: pager.SourceScroll, Phase: PhaseChange, Delta: -40, Momentum: true}, time.Unix(0, 0))
	if res.Began || r.Engine().Active() {
		t.Error("momentum sample opened a session")
	}
}

func TestRouterBeganWithMomentumOpens(t *testing.T) {
	r := newTestRouter(t, 3, 1)
	n := NewScrollNormalizer(8)

	s, ok := n.Normalize(ScrollEvent{DeltaX: -5, Precise: true, Phase: ScrollBegan, Momentum: ScrollChanged})
	if !ok {
		t.Fatal("began sample dropped")
	}
	res := r.Deliver(s, time.Unix(0, 0))
	if !res.Began || !r.Engine().Active() {
		t.Errorf("began carrying momentum flags = %+v, want session opened", res)
	}
}

func TestRouterSourceExclusivity(t *testing.T) {
	r := newTestRouter(t, 3, 1)
	now := time.Unix(0, 0)

	r.Deliver(Sample{Source: pager.SourceDrag, Phase: PhaseBegin, Delta: -30}, now)

	res := r.Deliver(Sample{Source: pager.SourceScroll, Phase: PhaseBegin, Delta: -200}, now)
	if res.Began || res.Offset != -30 {
		t.Errorf("foreign begin = %+v, want ignored with offset -30", res)
	}
	res = r.Deliver(Sample{Source: pager.SourceScroll, Phase: PhaseEnd}, now)
	if res.Committed {
		t.Error("foreign end committed the drag session")
	}
	if info, ok := r.Engine().Session(); !ok || info.Source != pager.SourceDrag {
		t.Errorf("Session() = %+v, %v, want drag session", info, ok)
	}
}

func TestRouterTouchesSession(t *testing.T) {
	r := newTestRouter(t, 3, 1)
	start := time.Unix(0, 0)

	r.Deliver(Sample{Source: pager.SourceScroll, Phase: PhaseBegin, Delta: -8}, start)
	r.Deliver(Sample{Source: pager.SourceScroll, Phase: PhaseChange, Delta: -8, Momentum: true}, start.Add(2*time.Second))

	info, _ := r.Engine().Session()
	if got := info.Idle(start.Add(2 * time.Second)); got != 0 {
		t.Errorf("Idle() = %v, want 0 after momentum activity", got)
	}
}

func TestRouterIgnoresInvalidSamples(t *testing.T) {
	r := newTestRouter(t, 3, 1)

	res := r.Deliver(Sample{Phase: PhaseBegin, Delta: -100}, time.Unix(0, 0))
	if res != (Result{}) || r.Engine().Active() {
		t.Errorf("sample without source = %+v, want no effect", res)
	}

	res = r.Deliver(Sample{Source: pager.SourceDrag, Delta: -100}, time.Unix(0, 0))
	if res.Began || r.Engine().Active() {
		t.Error("sample without phase opened a session")
	}
}
