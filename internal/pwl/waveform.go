// Package pwl implements the piecewise-linear waveform model: an
// ordered set of (time, voltage) breakpoints with a 1 picosecond time
// grid, plus the PWL text codec.
package pwl

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Quantum is the minimum time grid: no two points at rest may be
// closer than this, and dragged times snap to multiples of it.
const Quantum = 1e-12

// conflictThreshold is the window Insert treats as "already occupied".
// Deliberately twice the quantum, not one: a 1-quantum gap is legal at
// rest, so the rejection window must be wider than the push distance
// or a hand-inserted point could land in a gap that a later 1-quantum
// push would need, reordering the pair. Do not shrink this to Quantum.
const conflictThreshold = 2 * Quantum

// spacingSlack relaxes exact-quantum comparisons so float rounding in
// quantized arithmetic cannot flip a boundary case: a separation meant
// to be exactly N quanta may come out a few ulps short.
const spacingSlack = 1 - 1e-9

// PointID identifies a point across mutations. IDs are stable for the
// life of the waveform; indices are not, since ordering changes
// mid-drag.
type PointID int64

// Point is a single PWL breakpoint.
type Point struct {
	ID      PointID `json:"id"`
	Time    float64 `json:"time"`
	Voltage float64 `json:"voltage"`
}

// Waveform is an ordered sequence of points, strictly increasing by
// time with at least one Quantum of separation once settled. During an
// active drag the ordering and separation invariants are deliberately
// suspended; ResolveOverlaps restores them at release.
type Waveform struct {
	points []Point
	nextID PointID
}

// ErrUnknownPoint is returned when an operation names a point identity
// that is no longer present.
var ErrUnknownPoint = errors.New("pwl: unknown point id")

// OverlapError reports an insert that would land within the conflict
// window of an existing point.
type OverlapError struct {
	Time     float64
	Existing PointID
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("pwl: point at t=%g overlaps existing point %d", e.Time, e.Existing)
}

// New creates an empty waveform.
func New() *Waveform {
	return &Waveform{nextID: 1}
}

// Quantize rounds a time to the nearest multiple of Quantum.
func Quantize(t float64) float64 {
	return math.Round(t/Quantum) * Quantum
}

// Len returns the number of points.
func (w *Waveform) Len() int {
	return len(w.points)
}

// Points returns a copy of the points in their current order. At rest
// the order is strictly increasing by time; mid-drag it may not be.
func (w *Waveform) Points() []Point {
	out := make([]Point, len(w.points))
	copy(out, w.points)
	return out
}

// Point looks up a point by identity.
func (w *Waveform) Point(id PointID) (Point, bool) {
	if i := w.indexOf(id); i >= 0 {
		return w.points[i], true
	}
	return Point{}, false
}

func (w *Waveform) indexOf(id PointID) int {
	for i := range w.points {
		if w.points[i].ID == id {
			return i
		}
	}
	return -1
}

// Insert adds a point at the given time and voltage. The time is
// clamped to be non-negative and quantized. Returns an *OverlapError
// if an existing point occupies the conflict window; interactive
// flows that want silent adjustment go through ResolveOverlaps or
// EnsureMinSpacing instead.
func (w *Waveform) Insert(t, v float64) (PointID, error) {
	t = Quantize(math.Max(0, t))
	for i := range w.points {
		if math.Abs(w.points[i].Time-t) < conflictThreshold*spacingSlack {
			return 0, &OverlapError{Time: t, Existing: w.points[i].ID}
		}
	}

	id := w.nextID
	w.nextID++
	w.points = append(w.points, Point{ID: id, Time: t, Voltage: v})
	w.sortByTime()
	return id, nil
}

// Move repositions a point without enforcing ordering or separation.
// Mid-drag a point may pass freely through its neighbors; the
// invariants are restored by ResolveOverlaps at drag release.
// Enforcing spacing here made neighbors visibly repel the cursor.
func (w *Waveform) Move(id PointID, t, v float64) error {
	i := w.indexOf(id)
	if i < 0 {
		return ErrUnknownPoint
	}
	w.points[i].Time = math.Max(0, t)
	w.points[i].Voltage = v
	return nil
}

// Delete removes points by identity. Unknown IDs are ignored.
func (w *Waveform) Delete(ids []PointID) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[PointID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := w.points[:0]
	for _, p := range w.points {
		if !drop[p.ID] {
			kept = append(kept, p)
		}
	}
	w.points = kept
}

// Clear removes all points.
func (w *Waveform) Clear() {
	w.points = nil
}

// AddAll appends a batch of points (times and voltages taken from pts,
// identities assigned fresh), then normalizes the whole sequence with
// EnsureMinSpacing. Used by paste and the waveform generator.
// Returns the new identities in input order.
func (w *Waveform) AddAll(pts []Point) []PointID {
	ids := make([]PointID, len(pts))
	for i, p := range pts {
		id := w.nextID
		w.nextID++
		ids[i] = id
		w.points = append(w.points, Point{ID: id, Time: math.Max(0, p.Time), Voltage: p.Voltage})
	}
	w.points = EnsureMinSpacing(w.points)
	return ids
}

// SetPoints replaces the whole waveform, assigning fresh identities
// and normalizing spacing. Used by file load and paste-replace.
func (w *Waveform) SetPoints(pts []Point) {
	w.points = nil
	w.AddAll(pts)
}

// ResolveOverlaps settles the waveform after a drag of the given
// points. Each moved point is quantized, clamped into the corridor
// between its nearest stationary neighbors, and pushed at least one
// Quantum past the previously settled moved point. When the corridor
// is empty because a stationary point occupies the target with no
// room beneath it, the moved point settles one quantum above that
// point. Moved points are processed in increasing target-time order,
// so the pass is deterministic and idempotent.
func (w *Waveform) ResolveOverlaps(moved []PointID) {
	if len(moved) == 0 {
		w.sortByTime()
		return
	}

	movedSet := make(map[PointID]bool, len(moved))
	for _, id := range moved {
		if w.indexOf(id) >= 0 {
			movedSet[id] = true
		}
	}
	if len(movedSet) == 0 {
		w.sortByTime()
		return
	}

	// Stationary neighbor times, sorted for corridor lookups.
	var stationary []float64
	for _, p := range w.points {
		if !movedSet[p.ID] {
			stationary = append(stationary, p.Time)
		}
	}
	sort.Float64s(stationary)

	type entry struct {
		idx       int
		t         float64
		low, high float64
	}
	var entries []entry
	for i, p := range w.points {
		if !movedSet[p.ID] {
			continue
		}
		t := Quantize(math.Max(0, p.Time))
		pos := sort.SearchFloat64s(stationary, t)
		low := 0.0
		if pos > 0 {
			low = math.Max(0, stationary[pos-1]+Quantum)
		}
		high := math.Inf(1)
		if pos < len(stationary) {
			high = stationary[pos] - Quantum
		}
		entries = append(entries, entry{idx: i, t: t, low: low, high: high})
	}

	sort.SliceStable(entries, func(a, b int) bool { return entries[a].t < entries[b].t })

	prev := math.Inf(-1)
	for _, e := range entries {
		t := math.Max(e.t, e.low)
		if prev > math.Inf(-1) {
			t = math.Max(t, prev+Quantum)
		}
		if t > e.high {
			t = e.high
			if t < e.low {
				// Empty corridor: a stationary point sits on the
				// target with no room beneath it (it is at t=0, or
				// its own neighbors are only one quantum away).
				// Settle one quantum above it instead.
				t = math.Max(e.low, e.high+2*Quantum)
			}
			if prev > math.Inf(-1) && t < prev+Quantum {
				// Accept crowding against the previous moved point.
				t = prev + Quantum
			}
		}
		t = math.Max(0, t)
		w.points[e.idx].Time = t
		prev = t
	}

	w.sortByTime()
}

// EnsureMinSpacing sorts a point slice by time, clamps the first point
// to t >= 0, and pushes each following point to at least one Quantum
// after its predecessor. The input is not modified.
func EnsureMinSpacing(pts []Point) []Point {
	if len(pts) == 0 {
		return nil
	}
	out := make([]Point, len(pts))
	copy(out, pts)
	sort.SliceStable(out, func(a, b int) bool { return out[a].Time < out[b].Time })

	// The slack keeps points already exactly one quantum apart from
	// being nudged by float rounding in the addition.
	out[0].Time = math.Max(0, out[0].Time)
	for i := 1; i < len(out); i++ {
		if out[i].Time-out[i-1].Time < Quantum*spacingSlack {
			out[i].Time = out[i-1].Time + Quantum
		}
	}
	return out
}

func (w *Waveform) sortByTime() {
	sort.SliceStable(w.points, func(a, b int) bool {
		return w.points[a].Time < w.points[b].Time
	})
}
