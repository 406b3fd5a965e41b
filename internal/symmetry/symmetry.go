// Package symmetry folds the eight orientations of a board into one canonical
// representative.
//
// A transform is a permutation of cell indexes applied as a gather:
// image[i] = raw[forward[i]]. A move on the raw board at cell a sits at
// inverse[a] on the image, and a move on the image at cell c sits at forward[c]
// on the raw board.
package symmetry

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-agent/internal/entity"
)

// Transform identifies one element of the symmetry group of the square.
type Transform int

const (
	Identity Transform = iota
	Rotate90
	Rotate180
	Rotate270
	Reflect
	ReflectRotate90
	ReflectRotate180
	ReflectRotate270
)

// Count is the order of the group.
const Count = 8

var names = [Count]string{
	"identity",
	"rotate_90",
	"rotate_180",
	"rotate_270",
	"reflect_horizontal",
	"reflect_horizontal_rotate_90",
	"reflect_horizontal_rotate_180",
	"reflect_horizontal_rotate_270",
}

// Rotations are clockwise.
var forward = [Count][entity.BoardSize]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8},
	{6, 3, 0, 7, 4, 1, 8, 5, 2},
	{8, 7, 6, 5, 4, 3, 2, 1, 0},
	{2, 5, 8, 1, 4, 7, 0, 3, 6},
	{2, 1, 0, 5, 4, 3, 8, 7, 6},
	{8, 5, 2, 7, 4, 1, 6, 3, 0},
	{6, 7, 8, 3, 4, 5, 0, 1, 2},
	{0, 3, 6, 1, 4, 7, 2, 5, 8},
}

var inverse [Count][entity.BoardSize]int

func init() {
	for t := range forward {
		seen := [entity.BoardSize]bool{}
		for i, j := range forward[t] {
			if seen[j] {
				panic(fmt.Sprintf("symmetry: transform %s is not a permutation", names[t]))
			}
			seen[j] = true
			inverse[t][j] = i
		}
	}
}

func (t Transform) String() string {
	if t < 0 || int(t) >= Count {
		return fmt.Sprintf("transform(%d)", int(t))
	}
	return names[t]
}

// Transforms lists the group in its fixed enumeration order.
func Transforms() []Transform {
	ts := make([]Transform, Count)
	for i := range ts {
		ts[i] = Transform(i)
	}
	return ts
}

// Forward returns a copy of the gather permutation of t.
func Forward(t Transform) [entity.BoardSize]int {
	return forward[t]
}

// Inverse returns a copy of the inverse permutation of t.
func Inverse(t Transform) [entity.BoardSize]int {
	return inverse[t]
}

// Apply returns the image of state under t.
func Apply(state entity.State, t Transform) entity.State {
	var image entity.State
	for i, j := range forward[t] {
		image[i] = state[j]
	}
	return image
}

// Canonicalize picks the image with the smallest textual key. When several
// transforms give that image the lowest transform wins, so the choice is stable.
func Canonicalize(state entity.State) (entity.State, Transform) {
	best, bestT := state, Identity
	bestKey := state.String()

	for t := Rotate90; t < Count; t++ {
		image := Apply(state, t)
		if key := image.String(); key < bestKey {
			best, bestT, bestKey = image, t, key
		}
	}

	return best, bestT
}

// ToCanonical maps a move on the raw board onto the image of t.
func ToCanonical(action int, t Transform) int {
	return inverse[t][action]
}

// FromCanonical maps a move on the image of t back onto the raw board.
func FromCanonical(action int, t Transform) int {
	return forward[t][action]
}
