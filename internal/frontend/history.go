package frontend

import (
	"encoding/json"
	"sync"
	"time"

	"hwmonitor/internal/models"
)

// DefaultWindow is the number of points kept per series
const DefaultWindow = 60

// Point is one chart point. Placeholder points have Valid false and encode
// as JSON null so they are never read as a real zero.
type Point struct {
	Value float64
	At    time.Time
	Valid bool
}

func (p Point) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// Window is a fixed-length buffer, oldest first. It always holds exactly
// its capacity of points; the front is padded while history is short.
type Window struct {
	points []Point
}

// NewWindow returns a window of capacity placeholder points
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultWindow
	}
	return &Window{points: make([]Point, capacity)}
}

// Push appends p and evicts the oldest point
func (w *Window) Push(p Point) {
	copy(w.points, w.points[1:])
	w.points[len(w.points)-1] = p
}

// Points returns a copy of the buffer
func (w *Window) Points() []Point {
	return append([]Point(nil), w.points...)
}

// Values returns the real samples, oldest first
func (w *Window) Values() []float64 {
	var out []float64
	for _, p := range w.points {
		if p.Valid {
			out = append(out, p.Value)
		}
	}
	return out
}

// Filled counts real samples
func (w *Window) Filled() int {
	n := 0
	for _, p := range w.points {
		if p.Valid {
			n++
		}
	}
	return n
}

// Latest returns the newest point
func (w *Window) Latest() Point {
	return w.points[len(w.points)-1]
}

func (w *Window) Capacity() int {
	return len(w.points)
}

// NamedWindow is the window of one sensor in a named series
type NamedWindow struct {
	Name   string
	Points []Point
}

type namedSeries struct {
	order   []string
	windows map[string]*Window
}

// HistoryStore owns one window per mounted series. Every Seed of a series
// starts a new generation; writes tagged with an older generation are
// dropped.
type HistoryStore struct {
	mu       sync.RWMutex
	capacity int
	now      func() time.Time
	// spacing back-dates the points of a batch
	spacing time.Duration
	usage   map[Series]*Window
	named   map[Series]*namedSeries
	gens    map[Series]uint64
	lastGen uint64
}

// NewHistoryStore creates a store whose windows hold capacity points
func NewHistoryStore(capacity int) *HistoryStore {
	if capacity <= 0 {
		capacity = DefaultWindow
	}
	return &HistoryStore{
		capacity: capacity,
		now:      time.Now,
		spacing:  UsageInterval,
		usage:    make(map[Series]*Window),
		named:    make(map[Series]*namedSeries),
		gens:     make(map[Series]uint64),
	}
}

func (h *HistoryStore) Capacity() int {
	return h.capacity
}

// Seed creates an empty buffer for s and returns its generation. Seeding a
// seeded series keeps the buffer and returns the current generation.
func (h *HistoryStore) Seed(s Series) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	if gen, ok := h.gens[s]; ok {
		return gen
	}
	if s.Named() {
		h.named[s] = &namedSeries{windows: make(map[string]*Window)}
	} else {
		h.usage[s] = NewWindow(h.capacity)
	}
	h.lastGen++
	h.gens[s] = h.lastGen
	return h.lastGen
}

// Generation returns the generation of the buffer of s
func (h *HistoryStore) Generation(s Series) (uint64, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	gen, ok := h.gens[s]
	return gen, ok
}

// Remove drops the buffer of s
func (h *HistoryStore) Remove(s Series) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.usage, s)
	delete(h.named, s)
	delete(h.gens, s)
}

// current reports whether gen still names the buffer of s. Zero matches
// whatever buffer is seeded. Must hold h.mu.
func (h *HistoryStore) current(s Series, gen uint64) bool {
	cur, ok := h.gens[s]
	return ok && (gen == 0 || gen == cur)
}

// Has reports whether s is seeded
func (h *HistoryStore) Has(s Series) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if s.Named() {
		_, ok := h.named[s]
		return ok
	}
	_, ok := h.usage[s]
	return ok
}

// Append pushes one sample onto a usage series. Samples for series that are
// not seeded are dropped and false is returned.
func (h *HistoryStore) Append(s Series, value float64) bool {
	return h.AppendBatchAt(s, 0, []float64{value})
}

// AppendBatch pushes values in order. An empty batch leaves the buffer as is.
func (h *HistoryStore) AppendBatch(s Series, values []float64) bool {
	return h.AppendBatchAt(s, 0, values)
}

// AppendBatchAt is AppendBatch for the buffer of generation gen only. The
// newest value is stamped now and each older one a spacing earlier.
func (h *HistoryStore) AppendBatchAt(s Series, gen uint64, values []float64) bool {
	if len(values) == 0 {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.usage[s]
	if !ok || !h.current(s, gen) {
		return false
	}
	now := h.now()
	last := len(values) - 1
	for i, v := range values {
		at := now.Add(-time.Duration(last-i) * h.spacing)
		w.Push(Point{Value: v, At: at, Valid: true})
	}
	return true
}

// AppendNamed pushes one point per sensor. Known sensors missing from values
// get a placeholder so every window of the series advances together. An
// empty result leaves the series as is.
func (h *HistoryStore) AppendNamed(s Series, values []models.NameValue) bool {
	return h.AppendNamedAt(s, 0, values)
}

// AppendNamedAt is AppendNamed for the buffer of generation gen only
func (h *HistoryStore) AppendNamedAt(s Series, gen uint64, values []models.NameValue) bool {
	if len(values) == 0 {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ns, ok := h.named[s]
	if !ok || !h.current(s, gen) {
		return false
	}

	at := h.now()
	seen := make(map[string]bool, len(values))
	for _, nv := range values {
		if seen[nv.Name] {
			continue
		}
		seen[nv.Name] = true

		w, ok := ns.windows[nv.Name]
		if !ok {
			w = NewWindow(h.capacity)
			ns.windows[nv.Name] = w
			ns.order = append(ns.order, nv.Name)
		}
		w.Push(Point{Value: nv.Value, At: at, Valid: true})
	}
	for _, name := range ns.order {
		if !seen[name] {
			ns.windows[name].Push(Point{At: at})
		}
	}
	return true
}

// Read returns the usage buffer of s, oldest first, or nil when not seeded
func (h *HistoryStore) Read(s Series) []Point {
	h.mu.RLock()
	defer h.mu.RUnlock()

	w, ok := h.usage[s]
	if !ok {
		return nil
	}
	return w.Points()
}

// ReadNamed returns one window per sensor in first-seen order
func (h *HistoryStore) ReadNamed(s Series) []NamedWindow {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ns, ok := h.named[s]
	if !ok {
		return nil
	}
	out := make([]NamedWindow, 0, len(ns.order))
	for _, name := range ns.order {
		out = append(out, NamedWindow{Name: name, Points: ns.windows[name].Points()})
	}
	return out
}

// Labels returns a time label per point of a usage series, empty for padding
func (h *HistoryStore) Labels(s Series) []string {
	points := h.Read(s)
	if points == nil {
		return nil
	}
	labels := make([]string, len(points))
	for i, p := range points {
		if p.Valid {
			labels[i] = p.At.Format("15:04:05")
		}
	}
	return labels
}
