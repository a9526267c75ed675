// Command pokerpg trains a video poker discard policy interactively.
//
// Flag defaults can be overridden from the environment or a .env file in the working directory:
// POKERPG_PRESET, POKERPG_SEED, POKERPG_WORKERS, POKERPG_LOG and POKERPG_LEVEL.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorgonia/pokerpg"
	"github.com/gorgonia/pokerpg/encoding/csvlog"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(env(key, strconv.Itoa(def)))
	if err != nil {
		logrus.Fatalf("%v: %v", key, err)
	}
	return v
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Fatalf("loading .env: %v", err)
	}

	preset := flag.String("preset", env("POKERPG_PRESET", pokerpg.DefaultPreset), fmt.Sprintf("hyperparameters, one of %v", pokerpg.PresetNames()))
	seed := flag.Uint64("seed", uint64(envInt("POKERPG_SEED", int(time.Now().UnixNano()&0x7fffffff))), "root random seed")
	workers := flag.Int("workers", envInt("POKERPG_WORKERS", 0), "override the worker count of the preset")
	logfile := flag.String("log", env("POKERPG_LOG", ""), "progress log file, empty for none")
	level := flag.String("level", env("POKERPG_LEVEL", "info"), "log level")
	flag.Parse()

	lvl, err := logrus.ParseLevel(*level)
	if err != nil {
		logrus.Fatal(err)
	}
	logger := logrus.New()
	logger.SetLevel(lvl)

	conf, err := pokerpg.Preset(*preset)
	if err != nil {
		logger.Fatal(err)
	}
	conf.Seed = *seed
	conf.Logger = logger
	if *workers > 0 {
		conf.NumWorkers = *workers
	}
	if *logfile != "" {
		enc, err := csvlog.Create(*logfile)
		if err != nil {
			logger.Fatal(err)
		}
		defer enc.Close()
		conf.Progress = enc
	}

	a, err := pokerpg.New(conf)
	if err != nil {
		logger.Fatalf("%+v", err)
	}
	logger.WithFields(logrus.Fields{"run": a.ID(), "preset": *preset, "seed": *seed}).Info("agent ready")

	s := &session{agent: a, logger: logger}
	s.loop(bufio.NewScanner(os.Stdin))
	s.stop()
}

type session struct {
	agent  *pokerpg.Agent
	logger *logrus.Logger

	cancel context.CancelFunc
	done   chan error
}

func (s *session) training() bool { return s.cancel != nil }

func (s *session) train() {
	if s.training() {
		fmt.Println("already training")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan error, 1)
	go func() { s.done <- s.agent.Train(ctx) }()
}

func (s *session) stop() {
	if !s.training() {
		return
	}
	s.cancel()
	if err := <-s.done; err != nil {
		s.logger.Errorf("%+v", err)
	}
	s.cancel, s.done = nil, nil
}

const help = `commands:
  train            start training in the background
  stop             stop training at the next round boundary
  eval [n]         average score of n greedy hands (default 10000)
  targeted         greedy play of a few canonical hands
  stats            training counters
  save <file>      write the weights
  load <file>      read the weights
  dot              print the policy network as a graphviz graph
  quit`

func (s *session) loop(in *bufio.Scanner) {
	fmt.Println(help)
	for fmt.Print("> "); in.Scan(); fmt.Print("> ") {
		fields := strings.Fields(in.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "train":
			s.train()
			continue
		case "stop":
			s.stop()
			continue
		case "stats":
			s.stats()
			continue
		case "quit", "exit":
			return
		case "help":
			fmt.Println(help)
			continue
		}

		if s.training() {
			fmt.Println("stop training first")
			continue
		}
		if err := s.run(cmd, args); err != nil {
			fmt.Printf("%v\n", err)
		}
	}
}

func (s *session) run(cmd string, args []string) error {
	switch cmd {
	case "eval":
		n := 10000
		if len(args) > 0 {
			var err error
			if n, err = strconv.Atoi(args[0]); err != nil {
				return err
			}
		}
		avg, err := s.agent.RandomEval(n)
		if err != nil {
			return err
		}
		fmt.Printf("average score over %d hands: %.4f\n", n, avg)
	case "targeted":
		for _, res := range s.agent.TargetedEval() {
			fmt.Printf("%-10s %v  discard %v  p=%.3f  baseline %.3f\n", res.Name, res.Hand, res.Action, res.Confidence, res.Baseline)
		}
	case "save", "load":
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <file>", cmd)
		}
		if cmd == "save" {
			return s.agent.Save(args[0])
		}
		return s.agent.Load(args[0])
	case "dot":
		fmt.Println(s.agent.Net().ToDot())
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func (s *session) stats() {
	fmt.Printf("rounds %d, hands %d, average score %.4f, training time %v\n",
		s.agent.Rounds(), s.agent.Hands(), s.agent.AverageScore(), s.agent.TrainingTime().Round(time.Second))
}
