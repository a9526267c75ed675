// Package poker implements the rules of single hand Jacks or Better video poker: a shuffled
// 52 card deck, a five card deal, one exchange, and the payout table.
package poker

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Suit is a card suit. The order matters: it is the order of the suit one-hot encoding.
type Suit int8

const (
	Club Suit = iota
	Diamond
	Heart
	Spade
	NumSuits = 4
)

var suitGlyphs = [NumSuits]string{"♣", "♦", "♥", "♠"}
var suitLetters = [NumSuits]string{"c", "d", "h", "s"}

func (s Suit) Format(f fmt.State, c rune) {
	if s < 0 || s >= NumSuits {
		fmt.Fprintf(f, "Suit(%d)", int(s))
		return
	}
	switch c {
	case 'v':
		if f.Flag('+') {
			fmt.Fprint(f, [NumSuits]string{"Club", "Diamond", "Heart", "Spade"}[s])
			return
		}
		fallthrough
	default:
		fmt.Fprint(f, suitGlyphs[s])
	}
}

const (
	MinRank  = 2
	MaxRank  = 14 // ace
	NumRanks = MaxRank - MinRank + 1
)

const rankChars = "23456789TJQKA"

// Card is a playing card. Rank runs from 2 to 14, where 11 to 14 are jack, queen, king and ace.
type Card struct {
	Suit Suit
	Rank int8
}

func (c Card) IsValid() bool {
	return c.Suit >= 0 && c.Suit < NumSuits && c.Rank >= MinRank && c.Rank <= MaxRank
}

func (c Card) String() string {
	if !c.IsValid() {
		return fmt.Sprintf("Card{%d %d}", c.Suit, c.Rank)
	}
	return string(rankChars[c.Rank-MinRank]) + suitGlyphs[c.Suit]
}

// ParseCard parses a rank character followed by a suit, given either as a glyph or as one of
// the letters c, d, h and s. "10" is accepted for tens.
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "10") {
		s = "T" + s[2:]
	}
	if len(s) < 2 {
		return Card{}, errors.Errorf("cannot parse card %q", s)
	}
	r := strings.IndexByte(rankChars, strings.ToUpper(s[:1])[0])
	if r < 0 {
		return Card{}, errors.Errorf("unknown rank in card %q", s)
	}
	suit := strings.ToLower(s[1:])
	for i := Suit(0); i < NumSuits; i++ {
		if suit == suitGlyphs[i] || suit == suitLetters[i] {
			return Card{Suit: i, Rank: int8(r + MinRank)}, nil
		}
	}
	return Card{}, errors.Errorf("unknown suit in card %q", s)
}

// HandSize is the number of cards in a hand.
const HandSize = 5

// Hand is the five cards held by the player.
type Hand [HandSize]Card

func (h Hand) String() string {
	var buf strings.Builder
	for i, c := range h {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(c.String())
	}
	return buf.String()
}

// ParseHand parses five space separated cards, e.g. "T♣ J♣ Q♣ K♣ A♣" or "Tc Jc Qc Kc Ac".
func ParseHand(s string) (h Hand, err error) {
	fields := strings.Fields(s)
	if len(fields) != HandSize {
		return h, errors.Errorf("a hand has %d cards, got %d in %q", HandSize, len(fields), s)
	}
	for i, f := range fields {
		if h[i], err = ParseCard(f); err != nil {
			return h, errors.WithMessagef(err, "card %d", i)
		}
	}
	return h, nil
}

// MustParseHand is like ParseHand but panics on error. It is meant for hands known at compile time.
func MustParseHand(s string) Hand {
	h, err := ParseHand(s)
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	return h
}

// Discard marks the cards to exchange: Discard[i] is true when card i is replaced.
type Discard [HandSize]bool
