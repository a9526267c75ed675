package pokerpg

import (
	"github.com/chewxy/math32"
	"github.com/gorgonia/pokerpg/decision"
	"github.com/gorgonia/pokerpg/game/poker"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// TargetedHand is a fixed hand whose correct play is known.
type TargetedHand struct {
	Name string
	Hand poker.Hand
}

// TargetedHands are the hands inspected by TargetedEval.
var TargetedHands = []TargetedHand{
	{"Junk", poker.MustParseHand("2c 7s Th 4c 8d")},
	{"Pair", poker.MustParseHand("2c 2s Th 4c 8d")},
	{"High Pair", poker.MustParseHand("Qc Qs Th 4c 8d")},
	{"High Pair", poker.MustParseHand("3c Qs Th 4c Qd")},
	{"Two Pair", poker.MustParseHand("Qc Qs Th Tc 8d")},
	{"Trips", poker.MustParseHand("Qc Qs Qh Tc 8d")},
	{"Quads", poker.MustParseHand("Qc Qs Qh Tc Qd")},
}

// TargetedResult is the greedy play of a TargetedHand.
type TargetedResult struct {
	TargetedHand
	Outputs    []float32
	Action     decision.Action
	Confidence float32 // probability of Action under the policy
	Baseline   float32
}

// RandomEval plays n hands greedily with the current weights and returns the average score.
// The hands are not trained on and do not count towards the statistics.
func (a *Agent) RandomEval(n int) (float64, error) {
	if n < 1 {
		return 0, errors.Errorf("need at least one hand, got %d", n)
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	var total int
	for i := 0; i < n; i++ {
		s, err := a.playSample()
		if err != nil {
			return 0, errors.WithMessagef(err, "evaluation hand %d", i)
		}
		total += s.Score
	}
	avg := float64(total) / float64(n)
	a.log().WithFields(logrus.Fields{"hands": n, "average": avg}).Info("random evaluation")
	return avg, nil
}

// TargetedEval reports the greedy play of every TargetedHands entry.
func (a *Agent) TargetedEval() []TargetedResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	retVal := make([]TargetedResult, 0, len(TargetedHands))
	for _, th := range TargetedHands {
		a.input = a.enc(th.Hand, a.input)
		res := TargetedResult{
			TargetedHand: th,
			Baseline:     a.critic.Predict(a.input),
			Outputs:      append([]float32(nil), a.infer.FeedForward(a.input)...),
		}
		res.Action, _ = a.strategy.SelectAction(res.Outputs, a.rng, false)
		res.Confidence = a.confidence(res.Outputs, res.Action)
		if !validOutputs(res.Outputs) {
			a.log().WithField("hand", th.Hand.String()).Warnf("non finite policy outputs %v", res.Outputs)
		}
		retVal = append(retVal, res)
	}
	return retVal
}

func (a *Agent) confidence(outputs []float32, action decision.Action) float32 {
	if a.strategy.Kind() == decision.Combination {
		return outputs[decision.IndexFromAction(action)]
	}
	var p float32 = 1
	for i, o := range outputs {
		if action[i] {
			p *= o
		} else {
			p *= 1 - o
		}
	}
	return p
}

func validOutputs(outputs []float32) bool {
	for _, v := range outputs {
		if math32.IsInf(v, 0) {
			return false
		}
		if math32.IsNaN(v) {
			return false
		}
	}
	return true
}
