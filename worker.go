package pokerpg

import (
	"math/rand/v2"

	"github.com/gorgonia/pokerpg/baseline"
	"github.com/gorgonia/pokerpg/game/poker"
	"github.com/gorgonia/pokerpg/neural"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// worker plays its share of every round. Everything it holds is owned by one goroutine.
type worker struct {
	id   int
	ws   *neural.TrainingWorkspace
	rng  *rand.Rand
	game Game
	calc *baseline.Calculator

	input   []float32
	errs    []float32
	scratch []float32
}

func newWorker(id int, net *neural.Net, r *rand.Rand, game Game, calc *baseline.Calculator) *worker {
	return &worker{
		id:      id,
		ws:      neural.NewTrainingWorkspace(net),
		rng:     r,
		game:    game,
		calc:    calc,
		errs:    make([]float32, net.OutputWidth()),
		scratch: make([]float32, net.OutputWidth()),
	}
}

// playRound resets the gradient totals and plays NumInBatch hands.
func (w *worker) playRound(a *Agent) error {
	w.ws.Reset()
	for i := 0; i < a.conf.NumInBatch; i++ {
		if err := w.playHand(a); err != nil {
			return errors.WithMessagef(err, "worker %d, hand %d", w.id, i)
		}
	}
	return nil
}

func (w *worker) playHand(a *Agent) error {
	dealt, err := w.game.Deal()
	if err != nil {
		return errors.WithMessage(err, "deal")
	}
	w.input = a.enc(dealt, w.input)
	predicted := w.calc.Predict(w.input)

	outputs := w.ws.FeedForward(w.input)
	action, exhausted := a.strategy.SelectAction(outputs, w.rng, true)
	if exhausted {
		a.log().WithFields(logrus.Fields{"worker": w.id, "outputs": outputs}).Debug("categorical walk exhausted, picked the last combination")
	}

	final, err := w.game.Exchange(poker.Discard(action))
	if err != nil {
		return errors.WithMessage(err, "exchange")
	}
	score := w.game.Score(w.game.HandType(final))
	w.calc.Train(score)

	entropy := a.strategy.Entropy(outputs)
	advantage := float32(score) - predicted
	errs := a.policyError(outputs, action, advantage, entropy, w.errs, w.scratch)
	w.ws.Backpropagate(errs)

	a.record(score, entropy)
	return nil
}
