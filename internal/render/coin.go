// Package render draws the coin as terminal text.
package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuicoin/internal/spin"
)

const (
	rimRune   = '#'
	headsFill = 'o'
	tailsFill = '+'
	blankRune = ' '
	// Terminal cells are roughly twice as tall as they are wide.
	cellAspect = 2.0
	// shearCells is how far one unit of wobble leans the top row.
	shearCells = 1.5
)

var (
	rimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	headsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	tailsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	labelStyle = lipgloss.NewStyle().Bold(true)
)

// Coin projects the coin onto a grid of 2*radius+1 rows. angle is the flip
// about the horizontal axis, yaw the idle turn about the vertical axis.
// Every row has the same display width.
func Coin(angle, yaw, wobble float64, radius int) []string {
	if radius < 1 {
		radius = 1
	}
	rows := 2*radius + 1
	halfWidth := int(math.Round(float64(radius) * cellAspect))
	cols := FrameWidth(radius)
	center := cols / 2

	face := spin.FaceUp(angle)
	fill := headsFill
	if face == spin.Tails {
		fill = tailsFill
	}
	scale := math.Abs(math.Cos(angle))
	squash := math.Abs(math.Cos(yaw))
	shear := clamp(wobble, -1, 1) * shearCells

	grid := make([][]rune, rows)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(string(blankRune), cols))
	}

	r := float64(radius)
	span := int(math.Round(squash * float64(halfWidth)))
	switch {
	case scale*r < 0.5:
		// Flip edge-on: a rim line through the middle row.
		for x := -span; x <= span; x++ {
			grid[radius][center+x] = rimRune
		}
		return joinRows(grid)
	case span < 1:
		// Yaw edge-on: a rim column through the centre.
		depth := int(math.Round(scale * r))
		for y := -depth; y <= depth; y++ {
			grid[y+radius][center] = rimRune
		}
		return joinRows(grid)
	}

	for y := -radius; y <= radius; y++ {
		v := float64(y) / scale
		if math.Abs(v) > r+0.5 {
			continue
		}
		offset := int(math.Round(-shear * float64(y)))
		for x := -span; x <= span; x++ {
			u := float64(x) / (cellAspect * squash)
			d := math.Hypot(u, v)
			if d > r+0.25 {
				continue
			}
			ch := fill
			if d > r-0.75 {
				ch = rimRune
			}
			col := center + x + offset
			if col < 0 || col >= cols {
				continue
			}
			grid[y+radius][col] = ch
		}
	}
	placeLabel(grid, radius, center, face, scale*r, span)
	return joinRows(grid)
}

func placeLabel(grid [][]rune, row, center int, face spin.Outcome, halfHeight float64, halfSpan int) {
	label := []rune(face.String())
	if halfHeight < 2 || halfSpan < len(label)/2+2 {
		return
	}
	start := center - len(label)/2
	if start < 0 || start+len(label) > len(grid[row]) {
		return
	}
	copy(grid[row][start:], label)
}

func joinRows(grid [][]rune) []string {
	out := make([]string, len(grid))
	for i, row := range grid {
		out[i] = string(row)
	}
	return out
}

// Style colours a frame produced by Coin. Widths are preserved.
func Style(lines []string, face spin.Outcome) string {
	fillStyle := headsStyle
	if face == spin.Tails {
		fillStyle = tailsStyle
	}
	label := face.String()
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if idx := strings.Index(line, label); idx >= 0 && face.IsFace() {
			b.WriteString(styleRuns(line[:idx], fillStyle))
			b.WriteString(labelStyle.Inherit(fillStyle).Render(label))
			b.WriteString(styleRuns(line[idx+len(label):], fillStyle))
			continue
		}
		b.WriteString(styleRuns(line, fillStyle))
	}
	return b.String()
}

func styleRuns(line string, fillStyle lipgloss.Style) string {
	var b strings.Builder
	var run []rune
	var runStyle *lipgloss.Style
	flush := func() {
		if len(run) == 0 {
			return
		}
		if runStyle == nil {
			b.WriteString(string(run))
		} else {
			b.WriteString(runStyle.Render(string(run)))
		}
		run = run[:0]
	}
	for _, r := range line {
		var st *lipgloss.Style
		switch r {
		case rimRune:
			st = &rimStyle
		case blankRune:
			st = nil
		default:
			st = &fillStyle
		}
		if st != runStyle {
			flush()
			runStyle = st
		}
		run = append(run, r)
	}
	flush()
	return b.String()
}

// FrameWidth returns the number of columns in every row of Coin(_, _, _, radius).
func FrameWidth(radius int) int {
	if radius < 1 {
		radius = 1
	}
	halfWidth := int(math.Round(float64(radius) * cellAspect))
	return 2*halfWidth + 1 + 2*int(math.Ceil(shearCells*float64(radius)))
}

// FitRadius returns the largest radius whose frame fits in width x height.
func FitRadius(width, height int) int {
	radius := (height - 1) / 2
	for radius > 1 && FrameWidth(radius) > width {
		radius--
	}
	if radius < 1 {
		radius = 1
	}
	return radius
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
