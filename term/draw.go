package term

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/hoshinonyaruko/insane-snake/structs"
)

const (
	hudRows = 1 // score line above the board
	border  = 1
)

var foodStyles = map[structs.FoodType]tcell.Color{
	structs.FoodPlain:   tcell.ColorRed,
	structs.FoodSpeed:   tcell.ColorBlue,
	structs.FoodEnlarge: tcell.ColorGreen,
}

// Draw renders one frame: HUD, border, food, snake and the game-over message.
// The board is rotated clockwise by snap.Rotation.
func Draw(s tcell.Screen, snap structs.Snapshot) {
	bg := tcell.ColorReset
	if snap.Flicker {
		bg = tcell.NewRGBColor(int32(snap.Background.R), int32(snap.Background.G), int32(snap.Background.B))
	}
	base := tcell.StyleDefault.Background(bg)

	s.Clear()
	w, h := rotatedSize(snap.Width, snap.Height, snap.Rotation)

	drawText(s, 0, 0, fmt.Sprintf("Score: %d  Length: %d", snap.Score, snap.Length), tcell.StyleDefault.Bold(true))

	// 边框与背景
	for y := 0; y < h+2; y++ {
		for x := 0; x < w+2; x++ {
			ch := ' '
			st := base
			switch {
			case (x == 0 || x == w+1) && (y == 0 || y == h+1):
				ch = '+'
				st = tcell.StyleDefault
			case x == 0 || x == w+1:
				ch = '|'
				st = tcell.StyleDefault
			case y == 0 || y == h+1:
				ch = '-'
				st = tcell.StyleDefault
			}
			s.SetContent(x, y+hudRows, ch, nil, st)
		}
	}

	// 食物画在中心所在的格子
	fx := int(math.Floor(snap.Food.X + snap.Food.Width/2))
	fy := int(math.Floor(snap.Food.Y + snap.Food.Height/2))
	setCell(s, snap, fx, fy, '*', base.Foreground(foodStyles[snap.Food.Type]).Bold(true))

	for i := len(snap.Segments) - 1; i >= 0; i-- {
		seg := snap.Segments[i]
		ch, st := 'o', base.Foreground(tcell.ColorGreen)
		if i == 0 {
			ch = '@'
			if snap.HeadEnlarged {
				ch = 'O'
			}
			st = base.Foreground(tcell.ColorLime).Bold(true)
		}
		setCell(s, snap, seg.X, seg.Y, ch, st)
	}

	if snap.GameOver {
		cy := hudRows + border + h/2
		drawText(s, max(0, (w+2-len(snap.Message))/2), cy, snap.Message,
			tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorMaroon).Bold(true))
	}
	s.Show()
}

// setCell draws a grid cell, skipping anything outside the board.
func setCell(s tcell.Screen, snap structs.Snapshot, x, y int, ch rune, st tcell.Style) {
	if x < 0 || y < 0 || x >= snap.Width || y >= snap.Height {
		return
	}
	rx, ry := rotatePoint(x, y, snap.Width, snap.Height, snap.Rotation)
	s.SetContent(rx+border, ry+border+hudRows, ch, nil, st)
}

func normalize(deg int) int {
	return ((deg % 360) + 360) % 360
}

func rotatedSize(w, h, deg int) (int, int) {
	switch normalize(deg) {
	case 90, 270:
		return h, w
	}
	return w, h
}

// rotatePoint maps (x, y) on a w x h board turned clockwise by deg.
func rotatePoint(x, y, w, h, deg int) (int, int) {
	switch normalize(deg) {
	case 90:
		return h - 1 - y, x
	case 180:
		return w - 1 - x, h - 1 - y
	case 270:
		return y, w - 1 - x
	}
	return x, y
}

func drawText(s tcell.Screen, x, y int, text string, st tcell.Style) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, st)
	}
}
