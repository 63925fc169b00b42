package notation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/dcfr-solver/internal/cards"
)

func TestParsePocketPairExpandsToSixCombos(t *testing.T) {
	combos, err := Parse("QQ")
	require.NoError(t, err)
	require.Len(t, combos, 6)

	seen := make(map[cards.CardSet]bool)
	for _, c := range combos {
		assert.Equal(t, 2, cards.SetSize(c.Hand))
		assert.False(t, seen[c.Hand], "duplicate combo %v", c.Hand)
		seen[c.Hand] = true
		assert.Equal(t, float32(1), c.Weight)
	}
}

func TestParseSuitedExpandsToFourCombos(t *testing.T) {
	combos, err := Parse("AKs")
	require.NoError(t, err)
	assert.Len(t, combos, 4)
}

func TestParseOffsuitExpandsToTwelveCombos(t *testing.T) {
	combos, err := Parse("76o")
	require.NoError(t, err)
	assert.Len(t, combos, 12)
}

func TestParseWeightAppliesToEveryExpandedCombo(t *testing.T) {
	combos, err := Parse("76o:0.25")
	require.NoError(t, err)
	for _, c := range combos {
		assert.Equal(t, float32(0.25), c.Weight)
	}
}

func TestParseMultipleElementsCombine(t *testing.T) {
	combos, err := Parse("AKs:0.5, QQ, 76o:0.25")
	require.NoError(t, err)
	assert.Len(t, combos, 4+6+12)
}

func TestParseRejectsDuplicateHands(t *testing.T) {
	_, err := Parse("AKs, AKs")
	assert.Error(t, err)
}

func TestParsePocketPairRejectsSuitedSuffix(t *testing.T) {
	_, err := Parse("QQs")
	assert.Error(t, err)
}

func TestParseRejectsEmptyRange(t *testing.T) {
	_, err := Parse("")
	assert.Error(t, err)

	_, err = Parse("  , ,")
	assert.Error(t, err)
}

func TestParseRejectsOutOfRangeFrequency(t *testing.T) {
	_, err := Parse("QQ:1.5")
	assert.Error(t, err)

	_, err = Parse("QQ:0")
	assert.Error(t, err)
}

func TestParseRejectsUnknownRank(t *testing.T) {
	_, err := Parse("Z9o")
	assert.Error(t, err)
}
