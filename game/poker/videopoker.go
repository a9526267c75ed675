package poker

import (
	"math/rand/v2"

	"github.com/pkg/errors"
)

var (
	// ErrHandInProgress is returned by Deal when the previous hand has not been exchanged yet.
	ErrHandInProgress = errors.New("deal called while a hand is in progress")
	// ErrNoHand is returned by Exchange when no hand has been dealt.
	ErrNoHand = errors.New("exchange called while no hand is in progress")
)

// DeckSize is the number of cards in a deck.
const DeckSize = NumSuits * NumRanks

// Deck is a standard 52 card deck.
type Deck struct {
	cards [DeckSize]Card
	next  int
}

// NewDeck returns an unshuffled deck, ordered by suit then rank.
func NewDeck() *Deck {
	d := new(Deck)
	i := 0
	for s := Club; s < NumSuits; s++ {
		for r := MinRank; r <= MaxRank; r++ {
			d.cards[i] = Card{Suit: s, Rank: int8(r)}
			i++
		}
	}
	return d
}

// Shuffle reorders the whole deck and puts every card back into play.
func (d *Deck) Shuffle(r *rand.Rand) {
	r.Shuffle(len(d.cards), func(i, j int) { d.cards[i], d.cards[j] = d.cards[j], d.cards[i] })
	d.next = 0
}

// Draw deals the next card. It panics when the deck is exhausted, which a single hand of video
// poker cannot do.
func (d *Deck) Draw() Card {
	if d.next >= len(d.cards) {
		panic("deck exhausted")
	}
	c := d.cards[d.next]
	d.next++
	return c
}

// Remaining is the number of cards left to draw.
func (d *Deck) Remaining() int { return len(d.cards) - d.next }

// VideoPoker is a single player video poker machine. It is not safe for concurrent use.
type VideoPoker struct {
	rng        *rand.Rand
	deck       *Deck
	hand       Hand
	inProgress bool
}

// New creates a machine that shuffles with r.
func New(r *rand.Rand) *VideoPoker {
	return &VideoPoker{rng: r, deck: NewDeck()}
}

// Deal shuffles the deck and deals a fresh hand.
func (vp *VideoPoker) Deal() (Hand, error) {
	if vp.inProgress {
		return vp.hand, ErrHandInProgress
	}
	vp.inProgress = true
	vp.deck.Shuffle(vp.rng)
	for i := range vp.hand {
		vp.hand[i] = vp.deck.Draw()
	}
	return vp.hand, nil
}

// Exchange replaces the discarded cards with cards from the deck and finishes the hand.
func (vp *VideoPoker) Exchange(d Discard) (Hand, error) {
	if !vp.inProgress {
		return vp.hand, ErrNoHand
	}
	vp.inProgress = false
	for i, discard := range d {
		if discard {
			vp.hand[i] = vp.deck.Draw()
		}
	}
	return vp.hand, nil
}

// InProgress reports whether a hand has been dealt but not exchanged.
func (vp *VideoPoker) InProgress() bool { return vp.inProgress }

func (vp *VideoPoker) HandType(h Hand) Rank { return Classify(h) }

func (vp *VideoPoker) Score(r Rank) int { return Payout(r) }
