package poker

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardString(t *testing.T) {
	assert.Equal(t, "3♠", Card{Spade, 3}.String())
	assert.Equal(t, "K♥", Card{Heart, 13}.String())
	assert.Equal(t, "T♣ J♦ Q♥ K♠ A♣", Hand{{Club, 10}, {Diamond, 11}, {Heart, 12}, {Spade, 13}, {Club, 14}}.String())
	assert.Equal(t, "Diamond", fmt.Sprintf("%+v", Diamond))
	assert.Equal(t, "♦", fmt.Sprintf("%v", Diamond))
}

func TestParseHand(t *testing.T) {
	h, err := ParseHand("10c Jc Q♣ kc AC")
	require.NoError(t, err)
	assert.Equal(t, Hand{{Club, 10}, {Club, 11}, {Club, 12}, {Club, 13}, {Club, 14}}, h)

	for _, s := range []string{"Tc Jc Qc Kc", "Tc Jc Qc Kc Xc", "Tc Jc Qc Kc Ax", "Tc Jc Qc Kc A"} {
		_, err := ParseHand(s)
		assert.Error(t, err, s)
	}
	assert.Panics(t, func() { MustParseHand("2c") })
}

func TestDeck(t *testing.T) {
	d := NewDeck()
	assert.Equal(t, Card{Club, 2}, d.Draw())
	assert.Equal(t, Card{Club, 3}, d.Draw())
	assert.Equal(t, DeckSize-2, d.Remaining())

	d.Shuffle(rand.New(rand.NewPCG(2242, 0)))
	assert.Equal(t, DeckSize, d.Remaining())
	seen := make(map[Card]bool)
	for d.Remaining() > 0 {
		c := d.Draw()
		assert.True(t, c.IsValid(), "%v", c)
		assert.False(t, seen[c], "duplicate %v", c)
		seen[c] = true
	}
	assert.Len(t, seen, DeckSize)
	assert.Panics(t, func() { d.Draw() })

	unshuffled := NewDeck()
	d.Shuffle(rand.New(rand.NewPCG(2242, 0)))
	assert.NotEqual(t, unshuffled.cards, d.cards)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		hand string
		rank Rank
		pay  int
	}{
		{"Tc Jc Qc Kc Ac", RoyalFlush, 800},
		{"Ah Kh Th Qh Jh", RoyalFlush, 800},
		{"9d Td Jd Qd Kd", StraightFlush, 40},
		{"Ad 2d 3d 4d 5d", StraightFlush, 40},
		{"Qc Qs Qh Tc Qd", FourOfAKind, 20},
		{"Qc Qs Qh Tc Td", FullHouse, 9},
		{"2h 7h Th 4h 8h", Flush, 6},
		{"5c 6d 7h 8s 9c", Straight, 5},
		{"Ac 2d 3h 4s 5c", Straight, 5},
		{"Tc Jd Qh Ks Ac", Straight, 5},
		{"Qc Qs Qh Tc 8d", ThreeOfAKind, 3},
		{"Qc Qs Th Tc 8d", TwoPair, 2},
		{"Qc Qs Th 4c 8d", HighPair, 1},
		{"3c Qs Th 4c Qd", HighPair, 1},
		{"Jc Js 2h 4c 8d", HighPair, 1},
		{"Tc Ts 2h 4c 8d", Pair, 0},
		{"2c 2s Th 4c 8d", Pair, 0},
		{"2c 7s Th 4c 8d", HighCard, 0},
		{"Kc As 2h 3c 4d", HighCard, 0},
		{"Qc Kd Ah 2s 3c", HighCard, 0},
	}
	for _, tc := range tests {
		h := MustParseHand(tc.hand)
		r := Classify(h)
		assert.Equal(t, tc.rank, r, "%v", h)
		assert.Equal(t, tc.pay, Payout(r), "%v", h)
	}
	assert.Panics(t, func() { Payout(NumHandRanks) })
}

func TestVideoPokerStateMachine(t *testing.T) {
	vp := New(rand.New(rand.NewPCG(1, 1)))
	_, err := vp.Exchange(Discard{})
	assert.Equal(t, ErrNoHand, err)

	dealt, err := vp.Deal()
	require.NoError(t, err)
	assert.True(t, vp.InProgress())

	_, err = vp.Deal()
	assert.Equal(t, ErrHandInProgress, err)

	final, err := vp.Exchange(Discard{true, false, true, false, false})
	require.NoError(t, err)
	assert.False(t, vp.InProgress())
	assert.Equal(t, dealt[1], final[1])
	assert.Equal(t, dealt[3], final[3])
	assert.Equal(t, dealt[4], final[4])
	assert.NotEqual(t, dealt[0], final[0])
	assert.NotEqual(t, dealt[2], final[2])

	seen := make(map[Card]bool)
	for _, c := range append(dealt[:], final[0], final[2]) {
		assert.False(t, seen[c], "a card was dealt twice")
		seen[c] = true
	}

	_, err = vp.Exchange(Discard{})
	assert.Equal(t, ErrNoHand, err)
	_, err = vp.Deal()
	assert.NoError(t, err)
}

func TestVideoPokerDeterministic(t *testing.T) {
	a := New(rand.New(rand.NewPCG(5, 6)))
	b := New(rand.New(rand.NewPCG(5, 6)))
	for i := 0; i < 20; i++ {
		ha, _ := a.Deal()
		hb, _ := b.Deal()
		assert.Equal(t, ha, hb)
		ha, _ = a.Exchange(Discard{true, true, true, true, true})
		hb, _ = b.Exchange(Discard{true, true, true, true, true})
		assert.Equal(t, ha, hb)
	}
}
