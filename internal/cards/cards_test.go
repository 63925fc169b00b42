package cards

import "testing"

func TestParseCardRoundTrip(t *testing.T) {
	cases := map[string]CardID{
		"2c": IDFrom(0, Clubs),
		"Ah": IDFrom(12, Hearts),
		"Td": IDFrom(8, Diamonds),
	}
	for name, want := range cases {
		got, err := ParseCard(name)
		if err != nil {
			t.Fatalf("ParseCard(%q): %v", name, err)
		}
		if got != want {
			t.Errorf("ParseCard(%q) = %d, want %d", name, got, want)
		}
		if got.String() != name {
			t.Errorf("CardID(%d).String() = %q, want %q", got, got.String(), name)
		}
	}
}

func TestParseCardInvalid(t *testing.T) {
	for _, s := range []string{"", "A", "Ax", "1h", "Ahh"} {
		if _, err := ParseCard(s); err == nil {
			t.Errorf("ParseCard(%q): expected error", s)
		}
	}
}

func TestSetOps(t *testing.T) {
	ah, _ := ParseCard("Ah")
	kh, _ := ParseCard("Kh")
	s := CardToSet(ah) | CardToSet(kh)
	if SetSize(s) != 2 {
		t.Errorf("SetSize = %d, want 2", SetSize(s))
	}
	if !SetContains(s, ah) || !SetContains(s, kh) {
		t.Errorf("SetContains missing member")
	}
	low, rest := PopLowest(s)
	if low != kh {
		t.Errorf("PopLowest = %v, want %v (Kh sorts before Ah)", low, kh)
	}
	if SetSize(rest) != 1 {
		t.Errorf("remaining set size = %d, want 1", SetSize(rest))
	}
}

func TestDisjoint(t *testing.T) {
	a, _ := ParseCardSet("Ah,Kh")
	b, _ := ParseCardSet("Qc,Jc")
	if !Disjoint(a, b) {
		t.Errorf("expected disjoint sets")
	}
	c, _ := ParseCardSet("Ah,2c")
	if Disjoint(a, c) {
		t.Errorf("expected overlapping sets")
	}
}

func TestParseCardSetDuplicate(t *testing.T) {
	if _, err := ParseCardSet("Ah,Kh,Ah"); err == nil {
		t.Errorf("expected duplicate-card error")
	}
}

func TestOpponent(t *testing.T) {
	if P0.Opponent() != P1 || P1.Opponent() != P0 {
		t.Errorf("Opponent toggle broken")
	}
}
