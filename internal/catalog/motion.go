package catalog

import (
	"math"
	"time"
)

// Step moves a carousel index by delta over n slides, wrapping both ways.
func Step(index, delta, n int) int {
	if n <= 0 {
		return 0
	}
	return ((index+delta)%n + n) % n
}

// SlideWindow is the current slide plus its neighbours.
type SlideWindow struct {
	Index    int   `json:"index"`
	Previous int   `json:"previous"`
	Next     int   `json:"next"`
	Slide    Slide `json:"slide"`
}

func (h Hero) Window(index int) SlideWindow {
	n := len(h.Slides)
	i := Step(index, 0, n)
	w := SlideWindow{Index: i, Previous: Step(i, -1, n), Next: Step(i, 1, n)}
	if n > 0 {
		w.Slide = h.Slides[i]
	}
	return w
}

// CountAt is the counter value shown elapsed into an ease-out-cubic count up
// to end lasting duration.
func CountAt(end int, elapsed, duration time.Duration) int {
	if duration <= 0 || elapsed >= duration {
		return end
	}
	if elapsed <= 0 {
		return 0
	}
	p := float64(elapsed) / float64(duration)
	eased := 1 - math.Pow(1-p, 3)
	return int(math.Floor(eased * float64(end)))
}

// Frames samples the count at n evenly spaced points, the last being end.
func (c Counter) Frames(n int) []int {
	if n <= 0 {
		return nil
	}
	d := time.Duration(c.DurationMS) * time.Millisecond
	out := make([]int, n)
	for i := range n {
		out[i] = CountAt(c.Value, d*time.Duration(i+1)/time.Duration(n), d)
	}
	return out
}

// ImageFor picks the variant for a viewport width in CSS pixels. Zero means
// unknown and gets the medium image.
func (s ImageSet) ImageFor(width int) string {
	switch {
	case width <= 0:
		return s.Medium
	case width < 640:
		return s.Small
	case width < 1024:
		return s.Medium
	default:
		return s.Large
	}
}
