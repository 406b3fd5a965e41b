package symmetry

import (
	"math/rand/v2"
	"testing"

	"github.com/rocketscienceinc/tictactoe-agent/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomState(rng *rand.Rand) entity.State {
	marks := []entity.Mark{entity.EmptyCell, entity.PlayerX, entity.PlayerO}

	var s entity.State
	for i := range s {
		s[i] = marks[rng.IntN(len(marks))]
	}
	return s
}

func TestTransforms_AreBijectionsWithInverses(t *testing.T) {
	for _, tr := range Transforms() {
		t.Run(tr.String(), func(t *testing.T) {
			fwd, inv := Forward(tr), Inverse(tr)

			for i := 0; i < entity.BoardSize; i++ {
				assert.Equal(t, i, fwd[inv[i]], "forward after inverse must be identity")
				assert.Equal(t, i, inv[fwd[i]], "inverse after forward must be identity")
			}
		})
	}
}

func TestApply_Rotate90IsClockwise(t *testing.T) {
	// Given: X in the top-left corner
	state := entity.NewState().With(0, entity.PlayerX)

	// When: rotating clockwise
	image := Apply(state, Rotate90)

	// Then: X should sit in the top-right corner
	assert.Equal(t, "--X------", image.String())
}

func TestCanonicalize_FoldsOrbit(t *testing.T) {
	// Given: the four corner openings
	corners := []int{0, 2, 6, 8}

	var first entity.State
	for i, c := range corners {
		state := entity.NewState().With(c, entity.PlayerX)

		// When: canonicalizing each
		canonical, _ := Canonicalize(state)

		// Then: they should share a representative
		if i == 0 {
			first = canonical
			continue
		}
		assert.Equal(t, first, canonical)
	}
}

func TestCanonicalize_IsStableAndIdempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for n := 0; n < 500; n++ {
		state := randomState(rng)

		c1, t1 := Canonicalize(state)
		c2, t2 := Canonicalize(state)
		require.Equal(t, c1, c2)
		require.Equal(t, t1, t2)

		// the representative is its own canonical form
		again, _ := Canonicalize(c1)
		require.Equal(t, c1, again)

		// and it is the image the returned transform produces
		require.Equal(t, c1, Apply(state, t1))
	}
}

func TestCanonicalize_SymmetricBoardPrefersLowestTransform(t *testing.T) {
	// Given: a board invariant under every transform
	state := entity.NewState().With(4, entity.PlayerX)

	// When: canonicalizing it
	_, tr := Canonicalize(state)

	// Then: the identity should be chosen
	assert.Equal(t, Identity, tr)
}

func TestActionMapping_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))

	for n := 0; n < 500; n++ {
		state := randomState(rng)
		canonical, tr := Canonicalize(state)

		for a := 0; a < entity.BoardSize; a++ {
			c := ToCanonical(a, tr)

			assert.Equal(t, a, FromCanonical(c, tr))
			assert.Equal(t, state[a], canonical[c], "the mapped cell must hold the same mark")
		}
	}
}

func TestTransform_String(t *testing.T) {
	assert.Equal(t, "rotate_90", Rotate90.String())
	assert.Equal(t, "transform(9)", Transform(9).String())
}
