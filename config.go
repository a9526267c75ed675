package pokerpg

import (
	"runtime"
	"sort"

	"github.com/gorgonia/pokerpg/baseline"
	"github.com/gorgonia/pokerpg/neural"
	"github.com/klauspost/cpuid/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultLogStep is the number of rounds between two progress reports.
const DefaultLogStep = 2000

// Config configures an Agent.
type Config struct {
	Name string

	Actor              neural.Topology
	ActorLearningRate  float32
	ActorOptimizer     neural.OptimizerKind
	Momentum           float32 // β of the momentum optimizers, actor only
	EntropyCoefficient float32 // 0 disables the entropy bonus

	NumWorkers int // 0 uses one worker per physical core
	NumInBatch int // hands per worker per round
	LogStep    int // rounds between progress reports
	Seed       uint64

	Baseline baseline.Config

	// extensions
	Encoder  HandEncoder     // defaults to EncodeHand
	Games    GameFactory     // defaults to a poker.VideoPoker per worker
	Progress ProgressEncoder // optional
	Logger   *logrus.Logger  // defaults to the logrus standard logger
}

// BatchSize is the number of hands whose gradients are averaged into one update.
func (c Config) BatchSize() int { return c.NumWorkers * c.NumInBatch }

// Validate checks the configuration values. It does not check the encoder, whose width is only
// known once it has run.
func (c Config) Validate() error {
	if err := c.Actor.Validate(); err != nil {
		return errors.WithMessage(err, "actor topology")
	}
	if c.ActorLearningRate <= 0 {
		return errors.Errorf("actor learning rate must be positive, got %v", c.ActorLearningRate)
	}
	if c.ActorOptimizer < neural.SGD || c.ActorOptimizer >= neural.MAXOPTIMIZER {
		return errors.Errorf("invalid actor optimizer %v", c.ActorOptimizer)
	}
	if c.Momentum < 0 || c.Momentum >= 1 {
		return errors.Errorf("momentum must be in [0, 1), got %v", c.Momentum)
	}
	if c.EntropyCoefficient < 0 {
		return errors.Errorf("entropy coefficient must not be negative, got %v", c.EntropyCoefficient)
	}
	if c.NumWorkers < 1 {
		return errors.Errorf("need at least one worker, got %d", c.NumWorkers)
	}
	if c.NumInBatch < 1 {
		return errors.Errorf("need at least one hand per worker, got %d", c.NumInBatch)
	}
	if c.LogStep < 1 {
		return errors.Errorf("log step must be positive, got %d", c.LogStep)
	}
	if c.Baseline.Kind == baseline.Critic && (c.Baseline.Momentum < 0 || c.Baseline.Momentum >= 1) {
		return errors.Errorf("critic momentum must be in [0, 1), got %v", c.Baseline.Momentum)
	}
	return errors.WithMessage(c.Baseline.Validate(c.Actor.InputWidth()), "baseline")
}

// withDefaults fills in the zero valued fields that have a default.
func (c Config) withDefaults() Config {
	if c.NumWorkers == 0 {
		c.NumWorkers = DefaultNumWorkers()
	}
	if c.LogStep == 0 {
		c.LogStep = DefaultLogStep
	}
	if c.Encoder == nil {
		c.Encoder = EncodeHand
	}
	if c.Games == nil {
		c.Games = NewVideoPoker
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	if c.Name == "" {
		c.Name = "unnamed"
	}
	return c
}

// DefaultNumWorkers is the number of physical cores, or the number of logical CPUs when that
// cannot be detected.
func DefaultNumWorkers() int {
	if n := cpuid.CPU.PhysicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Topologies of the policy and value networks.
var (
	SoftmaxTopology = neural.Topology{
		{Neurons: EncodedHandWidth, Activation: neural.Linear},
		{Neurons: 170, Activation: neural.ReLU},
		{Neurons: 170, Activation: neural.ReLU},
		{Neurons: 32, Activation: neural.Softmax},
	}
	SigmoidTopology = neural.Topology{
		{Neurons: EncodedHandWidth, Activation: neural.Linear},
		{Neurons: 170, Activation: neural.ReLU},
		{Neurons: 170, Activation: neural.ReLU},
		{Neurons: 5, Activation: neural.Sigmoid},
	}
	CriticTopology = neural.Topology{
		{Neurons: EncodedHandWidth, Activation: neural.Linear},
		{Neurons: 85, Activation: neural.ReLU},
		{Neurons: 1, Activation: neural.Linear},
	}
)

var presets = map[string]func() Config{
	"softmax-critic-batched": func() Config {
		return Config{
			Name:              "170-170-Softmax-Critic_Network-32_Batch",
			Actor:             SoftmaxTopology.Clone(),
			ActorLearningRate: 0.03,
			NumWorkers:        8,
			NumInBatch:        4,
			LogStep:           DefaultLogStep,
			Baseline: baseline.Config{
				Kind:         baseline.Critic,
				Topology:     CriticTopology.Clone(),
				LearningRate: 0.04,
			},
		}
	},
	"softmax-critic-single": func() Config {
		return Config{
			Name:              "170-170-Softmax-Critic_Network-1_Batch",
			Actor:             SoftmaxTopology.Clone(),
			ActorLearningRate: 0.002,
			NumWorkers:        1,
			NumInBatch:        1,
			LogStep:           DefaultLogStep,
			Baseline: baseline.Config{
				Kind:         baseline.Critic,
				Topology:     CriticTopology.Clone(),
				LearningRate: 0.003,
			},
		}
	},
	"sigmoid-average": func() Config {
		return Config{
			Name:              "170-170-Sigmoid-Running_Average",
			Actor:             SigmoidTopology.Clone(),
			ActorLearningRate: 0.01,
			NumInBatch:        4,
			LogStep:           DefaultLogStep,
			Baseline:          baseline.Config{Kind: baseline.RunningAverage},
		}
	},
}

// DefaultPreset is the preset returned by DefaultConfig.
const DefaultPreset = "softmax-critic-batched"

// DefaultConfig is the batched softmax policy with a critic baseline.
func DefaultConfig() Config { return presets[DefaultPreset]() }

// Preset returns the named hyperparameter preset.
func Preset(name string) (Config, error) {
	p, ok := presets[name]
	if !ok {
		return Config{}, errors.Errorf("unknown preset %q, known presets are %v", name, PresetNames())
	}
	return p(), nil
}

// PresetNames lists the known presets in alphabetical order.
func PresetNames() []string {
	retVal := make([]string, 0, len(presets))
	for k := range presets {
		retVal = append(retVal, k)
	}
	sort.Strings(retVal)
	return retVal
}
