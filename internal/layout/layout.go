// Package layout tracks how the terminal width is split between the sidebar
// and the data grid.
package layout

import (
	"os"
	"sync"

	"golang.org/x/term"
)

// Dims is the current split, in terminal cells
type Dims struct {
	Width   int
	Height  int
	Sidebar int
	Grid    int
}

// Viewport reports the live container width, or false when it is unknown
type Viewport func() (int, bool)

// TerminalViewport reads the width of the terminal attached to stdout
func TerminalViewport() Viewport {
	fd := int(os.Stdout.Fd())
	return func() (int, bool) {
		if !term.IsTerminal(fd) {
			return 0, false
		}
		w, _, err := term.GetSize(fd)
		if err != nil || w <= 0 {
			return 0, false
		}
		return w, true
	}
}

// Bounds limit the sidebar width
type Bounds struct {
	Sidebar int
	Min     int
	Max     int
}

// State holds the sidebar and grid widths. Every change re-derives the
// split from the live viewport width instead of a stored total.
type State struct {
	mu       sync.Mutex
	viewport Viewport
	bounds   Bounds

	// last width/height seen in a resize event, used when the viewport is unknown
	width  int
	height int

	sidebar int
	grid    int

	subs   map[int]func(Dims)
	nextID int
}

// New returns a layout with the initial sidebar width clamped to bounds.
// A nil viewport means only resize events are trusted.
func New(b Bounds, viewport Viewport) *State {
	if b.Max > 0 && b.Min > b.Max {
		b.Min, b.Max = b.Max, b.Min
	}
	s := &State{
		viewport: viewport,
		bounds:   b,
		subs:     make(map[int]func(Dims)),
	}
	s.sidebar = s.clamp(b.Sidebar)
	return s
}

// Dims returns the current split
func (s *State) Dims() Dims {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dims()
}

// ResizeSidebar sets the sidebar width; the grid takes the rest
func (s *State) ResizeSidebar(w int) Dims {
	s.mu.Lock()
	live := s.live()
	s.sidebar = s.clamp(w)
	s.grid = max(live-s.sidebar, 0)
	return s.changed()
}

// ResizeGrid sets the grid width; the sidebar takes the rest, within its
// bounds, and the grid is recomputed from what the sidebar got
func (s *State) ResizeGrid(w int) Dims {
	s.mu.Lock()
	live := s.live()
	s.sidebar = s.clamp(live - w)
	s.grid = max(live-s.sidebar, 0)
	return s.changed()
}

// ContainerResized records a new container size and recomputes the grid
func (s *State) ContainerResized(width, height int) Dims {
	s.mu.Lock()
	s.width, s.height = width, height
	live := s.live()
	s.grid = max(live-s.sidebar, 0)
	return s.changed()
}

// Subscribe registers fn to be called after every change. The returned
// function removes it.
func (s *State) Subscribe(fn func(Dims)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// changed unlocks s and notifies subscribers with the new dims
func (s *State) changed() Dims {
	d := s.dims()
	subs := make([]func(Dims), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(d)
	}
	return d
}

func (s *State) dims() Dims {
	return Dims{Width: s.live(), Height: s.height, Sidebar: s.sidebar, Grid: s.grid}
}

func (s *State) live() int {
	if s.viewport != nil {
		if w, ok := s.viewport(); ok {
			return w
		}
	}
	return s.width
}

func (s *State) clamp(w int) int {
	if w < s.bounds.Min {
		w = s.bounds.Min
	}
	if s.bounds.Max > 0 && w > s.bounds.Max {
		w = s.bounds.Max
	}
	return w
}
