package evaluator

import (
	"testing"

	"github.com/lox/dcfr-solver/internal/cards"
)

func TestTableSize(t *testing.T) {
	if got, want := TableSize(), 2598960; got != want {
		t.Fatalf("TableSize() = %d, want %d", got, want)
	}
}

func TestDistinctRanksAndTypeCounts(t *testing.T) {
	ensureTables()

	distinct := make(map[HandRank]struct{}, 8000)
	var typeCounts [10]int
	for _, r := range fiveCardTable {
		distinct[r] = struct{}{}
		typeCounts[r.Type()]++
	}

	if got, want := len(distinct), 7462; got != want {
		t.Errorf("distinct ranks = %d, want %d", got, want)
	}

	want := [10]int{1302540, 1098240, 123552, 54912, 10200, 5108, 3744, 624, 36, 4}
	for i, w := range want {
		if typeCounts[i] != w {
			t.Errorf("type %s count = %d, want %d", HandType(i), typeCounts[i], w)
		}
	}
}

func TestRoyalFlushBeatsEverything(t *testing.T) {
	hand := [5]cards.CardID{
		cards.IDFrom(8, cards.Spades),
		cards.IDFrom(9, cards.Spades),
		cards.IDFrom(10, cards.Spades),
		cards.IDFrom(11, cards.Spades),
		cards.IDFrom(12, cards.Spades),
	}
	r := FiveCardRank(hand)
	if r.Type() != RoyalFlush {
		t.Fatalf("got %s, want RoyalFlush", r.Type())
	}
}

func TestWheelStraightRanksBelowSix(t *testing.T) {
	wheel := [5]cards.CardID{
		cards.IDFrom(12, cards.Clubs),
		cards.IDFrom(0, cards.Diamonds),
		cards.IDFrom(1, cards.Hearts),
		cards.IDFrom(2, cards.Spades),
		cards.IDFrom(3, cards.Clubs),
	}
	sixHigh := [5]cards.CardID{
		cards.IDFrom(1, cards.Clubs),
		cards.IDFrom(2, cards.Diamonds),
		cards.IDFrom(3, cards.Hearts),
		cards.IDFrom(4, cards.Spades),
		cards.IDFrom(0, cards.Hearts),
	}
	rw := FiveCardRank(wheel)
	rs := FiveCardRank(sixHigh)
	if rw.Type() != Straight || rs.Type() != Straight {
		t.Fatalf("expected straights, got %s and %s", rw.Type(), rs.Type())
	}
	if rw >= rs {
		t.Fatalf("wheel (rank %d) should rank below six-high straight (rank %d)", rw, rs)
	}
}

func TestSevenCardRankTakesBestFive(t *testing.T) {
	hand := [7]cards.CardID{
		cards.IDFrom(0, cards.Clubs),
		cards.IDFrom(0, cards.Diamonds),
		cards.IDFrom(0, cards.Hearts),
		cards.IDFrom(0, cards.Spades),
		cards.IDFrom(5, cards.Clubs),
		cards.IDFrom(6, cards.Clubs),
		cards.IDFrom(7, cards.Clubs),
	}
	r := SevenCardRank(hand)
	if r.Type() != FourOfAKind {
		t.Fatalf("got %s, want FourOfAKind", r.Type())
	}
}
