package environment

import (
	"strings"

	"github.com/courierlab/gridcourier/pkg/types"
)

// Render draws the grid at time t as ASCII art: terrain symbols, 'O' for
// cells occupied by moving obstacles, and 'A' for the agent. Consumed by the
// demo and by debugging output; the core never parses it back.
func (e *Environment) Render(agent types.Position, t int64) string {
	e.mu.RLock()
	occupied := make(map[types.Position]struct{}, len(e.schedules))
	for _, s := range e.schedules {
		if pos, ok := s.At(t); ok {
			occupied[pos] = struct{}{}
		}
	}
	e.mu.RUnlock()

	var b strings.Builder
	b.Grow((e.width + 1) * e.height)
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			pos := types.Position{X: x, Y: y}
			switch {
			case pos == agent:
				b.WriteByte('A')
			default:
				if _, ok := occupied[pos]; ok {
					b.WriteByte('O')
				} else {
					b.WriteByte(e.grid[y*e.width+x].Symbol())
				}
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
