package pwl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertStrictlyIncreasing(t *testing.T, w *Waveform) {
	t.Helper()
	pts := w.Points()
	for i := 1; i < len(pts); i++ {
		if pts[i].Time-pts[i-1].Time < Quantum*(1-1e-9) {
			t.Errorf("points %d and %d too close: %g and %g", i-1, i, pts[i-1].Time, pts[i].Time)
		}
	}
}

func TestQuantize(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(0.0, Quantize(0))
	assert.Equal(1e-12, Quantize(1.4e-12))
	assert.Equal(2e-12, Quantize(1.6e-12))
	assert.InDelta(1e-9, Quantize(1.0000004e-9), 1e-15)
}

func TestInsert_SortsAndQuantizes(t *testing.T) {
	assert := assert.New(t)
	w := New()

	_, err := w.Insert(2e-9, 1.0)
	assert.NoError(err)
	_, err = w.Insert(1e-9, 0.5)
	assert.NoError(err)
	_, err = w.Insert(3.0000004e-9, -1.0)
	assert.NoError(err)

	pts := w.Points()
	assert.Len(pts, 3)
	assert.Equal(1e-9, pts[0].Time)
	assert.Equal(2e-9, pts[1].Time)
	assert.InDelta(3e-9, pts[2].Time, 1e-15)
	assertStrictlyIncreasing(t, w)
}

func TestInsert_ClampsNegativeTime(t *testing.T) {
	assert := assert.New(t)
	w := New()

	_, err := w.Insert(-5e-9, 1.0)
	assert.NoError(err)
	assert.Equal(0.0, w.Points()[0].Time)
}

func TestInsert_Overlap(t *testing.T) {
	assert := assert.New(t)
	w := New()

	id, err := w.Insert(1e-9, 1.0)
	assert.NoError(err)

	_, err = w.Insert(1e-9+1e-12, 2.0)
	var overlap *OverlapError
	assert.True(errors.As(err, &overlap))
	assert.Equal(id, overlap.Existing)

	// Outside the conflict window is fine.
	_, err = w.Insert(1e-9+2e-12, 2.0)
	assert.NoError(err)
}

func TestMove_UnknownPoint(t *testing.T) {
	assert := assert.New(t)
	w := New()

	err := w.Move(42, 1e-9, 0)
	assert.True(errors.Is(err, ErrUnknownPoint))
}

func TestMove_DoesNotReorder(t *testing.T) {
	assert := assert.New(t)
	w := New()

	a, _ := w.Insert(1e-9, 0)
	b, _ := w.Insert(2e-9, 1)
	_, _ = w.Insert(3e-9, 2)

	// Mid-drag a point passes freely through its neighbors; the slice
	// keeps its stale order until the drag settles.
	assert.NoError(w.Move(b, 5e-9, 1))
	pts := w.Points()
	assert.Equal(a, pts[0].ID)
	assert.Equal(b, pts[1].ID)
	assert.Equal(5e-9, pts[1].Time)
}

func TestResolveOverlaps_PassThrough(t *testing.T) {
	assert := assert.New(t)
	w := New()

	a, _ := w.Insert(1e-9, 0)
	b, _ := w.Insert(2e-9, 1)
	c, _ := w.Insert(3e-9, 2)

	assert.NoError(w.Move(b, 5e-9, 1))
	w.ResolveOverlaps([]PointID{b})

	pts := w.Points()
	assert.Equal([]PointID{a, c, b}, []PointID{pts[0].ID, pts[1].ID, pts[2].ID})
	assert.Equal(5e-9, pts[2].Time)
	assertStrictlyIncreasing(t, w)
}

func TestResolveOverlaps_ClampsIntoCorridor(t *testing.T) {
	assert := assert.New(t)
	w := New()

	_, _ = w.Insert(1e-9, 0)
	b, _ := w.Insert(2e-9, 1)
	c, _ := w.Insert(3e-9, 2)

	// Dropped exactly onto a stationary neighbor: pushed one quantum
	// short of it, neighbor untouched.
	assert.NoError(w.Move(b, 3e-9, 1))
	w.ResolveOverlaps([]PointID{b})

	bp, _ := w.Point(b)
	cp, _ := w.Point(c)
	assert.Equal(3e-9, cp.Time)
	assert.InDelta(3e-9-Quantum, bp.Time, 1e-24)
	assert.True(bp.Time < cp.Time)
	assertStrictlyIncreasing(t, w)
}

func TestResolveOverlaps_CascadesMovedPoints(t *testing.T) {
	assert := assert.New(t)
	w := New()

	_, _ = w.Insert(0, 0)
	b, _ := w.Insert(1e-9, 1)
	c, _ := w.Insert(2e-9, 2)

	// Both dragged onto the same target time.
	assert.NoError(w.Move(b, 5e-9, 1))
	assert.NoError(w.Move(c, 5e-9, 2))
	w.ResolveOverlaps([]PointID{b, c})

	bp, _ := w.Point(b)
	cp, _ := w.Point(c)
	assert.Equal(5e-9, bp.Time)
	assert.InDelta(5e-9+Quantum, cp.Time, 1e-24)
	assertStrictlyIncreasing(t, w)
}

func TestResolveOverlaps_DropOnPointAtZero(t *testing.T) {
	assert := assert.New(t)
	w := New()

	a, _ := w.Insert(0, 0)
	b, _ := w.Insert(5e-12, 1)

	// Dragged onto the stationary point at t=0: no room beneath it, so
	// the dragged point settles exactly one quantum above, keeping both
	// the spacing and the original order.
	assert.NoError(w.Move(b, 0, 1))
	w.ResolveOverlaps([]PointID{b})

	ap, _ := w.Point(a)
	bp, _ := w.Point(b)
	assert.Equal(0.0, ap.Time)
	assert.InDelta(Quantum, bp.Time, 1e-24)
	assert.True(ap.Time < bp.Time)
	assertStrictlyIncreasing(t, w)
}

func TestResolveOverlaps_QuantumPairStaysPut(t *testing.T) {
	assert := assert.New(t)
	w := New()

	// Two points a single quantum apart are legal at rest; dragging the
	// later one onto the earlier must leave them exactly as they were.
	ids := w.AddAll([]Point{{Time: 0, Voltage: 0}, {Time: Quantum, Voltage: 1}})

	assert.NoError(w.Move(ids[1], 0, 1))
	w.ResolveOverlaps([]PointID{ids[1]})

	ap, _ := w.Point(ids[0])
	bp, _ := w.Point(ids[1])
	assert.Equal(0.0, ap.Time)
	assert.InDelta(Quantum, bp.Time, 1e-24)
	assertStrictlyIncreasing(t, w)
}

func TestResolveOverlaps_DropBetweenQuantumNeighbors(t *testing.T) {
	assert := assert.New(t)
	w := New()

	// Stationary neighbors one quantum apart leave no gap at all; a
	// point dropped onto the pair settles just past it.
	ids := w.AddAll([]Point{
		{Time: 0, Voltage: 0},
		{Time: Quantum, Voltage: 1},
		{Time: 5e-9, Voltage: 2},
	})

	assert.NoError(w.Move(ids[2], Quantum, 2))
	w.ResolveOverlaps([]PointID{ids[2]})

	cp, _ := w.Point(ids[2])
	assert.InDelta(2*Quantum, cp.Time, 1e-24)
	assertStrictlyIncreasing(t, w)
}

func TestResolveOverlaps_Idempotent(t *testing.T) {
	assert := assert.New(t)
	w := New()

	_, _ = w.Insert(1e-9, 0)
	b, _ := w.Insert(2e-9, 1)
	c, _ := w.Insert(3e-9, 2)

	assert.NoError(w.Move(b, 3e-9, 1))
	assert.NoError(w.Move(c, 3e-9, 2))
	w.ResolveOverlaps([]PointID{b, c})
	first := w.Points()

	w.ResolveOverlaps([]PointID{b, c})
	second := w.Points()

	assert.Equal(len(first), len(second))
	for i := range first {
		assert.Equal(first[i].ID, second[i].ID)
		assert.InDelta(first[i].Time, second[i].Time, 1e-24)
	}
}

func TestResolveOverlaps_IgnoresDeletedIDs(t *testing.T) {
	assert := assert.New(t)
	w := New()

	a, _ := w.Insert(1e-9, 0)
	b, _ := w.Insert(2e-9, 1)
	w.Delete([]PointID{b})

	w.ResolveOverlaps([]PointID{b})
	assert.Equal(1, w.Len())
	ap, ok := w.Point(a)
	assert.True(ok)
	assert.Equal(1e-9, ap.Time)
}

func TestDelete(t *testing.T) {
	assert := assert.New(t)
	w := New()

	a, _ := w.Insert(1e-9, 0)
	b, _ := w.Insert(2e-9, 1)
	c, _ := w.Insert(3e-9, 2)

	w.Delete([]PointID{a, c, 999})
	assert.Equal(1, w.Len())
	_, ok := w.Point(b)
	assert.True(ok)
	_, ok = w.Point(a)
	assert.False(ok)
}

func TestAddAll_AssignsFreshIDsAndSpaces(t *testing.T) {
	assert := assert.New(t)
	w := New()

	ids := w.AddAll([]Point{
		{Time: 1e-9, Voltage: 0},
		{Time: 1e-9, Voltage: 1},
		{Time: -1e-9, Voltage: 2},
	})
	assert.Len(ids, 3)
	assert.Equal(3, w.Len())
	assertStrictlyIncreasing(t, w)

	pts := w.Points()
	assert.Equal(0.0, pts[0].Time)
	assert.Equal(2.0, pts[0].Voltage)
}

func TestEnsureMinSpacing(t *testing.T) {
	assert := assert.New(t)

	out := EnsureMinSpacing([]Point{
		{Time: 2e-9, Voltage: 1},
		{Time: 2e-9, Voltage: 2},
		{Time: 1e-9, Voltage: 0},
	})
	assert.Equal(1e-9, out[0].Time)
	assert.Equal(2e-9, out[1].Time)
	assert.InDelta(2e-9+Quantum, out[2].Time, 1e-24)
}

func TestEnsureMinSpacing_KeepsExactQuantumGaps(t *testing.T) {
	assert := assert.New(t)

	in := []Point{
		{Time: 0},
		{Time: Quantum},
		{Time: 2 * Quantum},
	}
	out := EnsureMinSpacing(in)
	for i := range in {
		assert.Equal(in[i].Time, out[i].Time)
	}
}

func TestEnsureMinSpacing_Empty(t *testing.T) {
	assert.Nil(t, EnsureMinSpacing(nil))
}

func TestMoveClampsNegative(t *testing.T) {
	assert := assert.New(t)
	w := New()

	a, _ := w.Insert(1e-9, 0)
	assert.NoError(w.Move(a, -3e-9, 0.5))
	p, _ := w.Point(a)
	assert.Equal(0.0, p.Time)
	assert.Equal(0.5, p.Voltage)
}

func TestSetPoints(t *testing.T) {
	assert := assert.New(t)
	w := New()

	_, _ = w.Insert(5e-9, 9)
	w.SetPoints([]Point{{Time: 1e-9, Voltage: 1}, {Time: 2e-9, Voltage: 2}})

	assert.Equal(2, w.Len())
	pts := w.Points()
	assert.Equal(1e-9, pts[0].Time)
	assert.Equal(2e-9, pts[1].Time)
}

func TestClear(t *testing.T) {
	w := New()
	_, _ = w.Insert(1e-9, 0)
	w.Clear()
	if w.Len() != 0 {
		t.Errorf("expected empty waveform, got %d points", w.Len())
	}
}

func TestResolveOverlaps_NoMovedStillSorts(t *testing.T) {
	assert := assert.New(t)
	w := New()

	b, _ := w.Insert(2e-9, 1)
	_ = b
	a, _ := w.Insert(1e-9, 0)
	assert.NoError(w.Move(a, 4e-9, 0))

	w.ResolveOverlaps(nil)
	pts := w.Points()
	assert.True(pts[0].Time <= pts[1].Time)
	assert.Equal(2e-9, pts[0].Time)
}
