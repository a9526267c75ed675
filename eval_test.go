package pokerpg

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/gorgonia/pokerpg/baseline"
	"github.com/gorgonia/pokerpg/decision"
	"github.com/gorgonia/pokerpg/neural"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomEval(t *testing.T) {
	a, err := New(smallConfig(baseline.Flat))
	require.NoError(t, err)

	avg, err := a.RandomEval(200)
	require.NoError(t, err)
	assert.True(t, avg >= 0 && avg <= 800)
	assert.Zero(t, a.Hands(), "evaluation hands are not training hands")

	_, err = a.RandomEval(0)
	assert.Error(t, err)
}

func TestTargetedEval(t *testing.T) {
	for _, kind := range []baseline.Kind{baseline.Flat, baseline.Critic} {
		a, err := New(smallConfig(kind))
		require.NoError(t, err)

		results := a.TargetedEval()
		require.Len(t, results, len(TargetedHands))
		for i, res := range results {
			assert.Equal(t, TargetedHands[i], res.TargetedHand)
			require.Len(t, res.Outputs, decision.NumCombinations)
			assert.Equal(t, res.Outputs[decision.IndexFromAction(res.Action)], res.Confidence)
			assert.Equal(t, a.Decide(res.Hand), res.Action)
		}
		if kind == baseline.Flat {
			assert.Equal(t, baseline.FlatPrediction, results[0].Baseline)
		}
	}
}

func TestTargetedEvalFiveBits(t *testing.T) {
	conf := smallConfig(baseline.RunningAverage)
	conf.Actor[2] = neural.LayerSpec{Neurons: decision.NumCards, Activation: neural.Sigmoid}
	a, err := New(conf)
	require.NoError(t, err)

	for _, res := range a.TargetedEval() {
		var want float32 = 1
		for i, p := range res.Outputs {
			assert.Equal(t, p > 0.5, res.Action[i])
			if res.Action[i] {
				want *= p
			} else {
				want *= 1 - p
			}
		}
		assert.Equal(t, want, res.Confidence)
		assert.Equal(t, baseline.RandomPlayEV, res.Baseline)
	}
}

func TestValidOutputs(t *testing.T) {
	assert.True(t, validOutputs([]float32{0, 0.5, 1}))
	assert.False(t, validOutputs([]float32{0, math32.NaN()}))
	assert.False(t, validOutputs([]float32{math32.Inf(1)}))
}
