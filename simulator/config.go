package simulator

import (
	"runtime"

	"github.com/sirupsen/logrus"
)

// Config tunes a Simulator. The zero value and nil are valid.
type Config struct {
	// Workers is the number of worker goroutines running calculators. If
	// less or equal to 0, the value of GOMAXPROCS is used.
	Workers int
	// Progress, if set, is told how far the analysis got.
	Progress Progress
	// Logger defaults to the logrus standard logger.
	Logger logrus.FieldLogger
}

func (c *Config) withDefaults() Config {
	var cfg Config
	if c != nil {
		cfg = *c
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Progress == nil {
		cfg.Progress = noProgress{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger().WithField("component", "simulator")
	}
	return cfg
}

// Pass identifies one pass of the dependency analysis.
type Pass int

const (
	// calculator passes
	PassIndex Pass = iota
	PassConstrained
	PassPullIn
	PassGroups
	PassOrders
	PassSlots

	// priority pair passes
	PassPairs
	PassLevels
)

var passNames = [...]string{
	PassIndex:       "index",
	PassConstrained: "constrained",
	PassPullIn:      "pull-in",
	PassGroups:      "groups",
	PassOrders:      "orders",
	PassSlots:       "slots",
	PassPairs:       "pairs",
	PassLevels:      "levels",
}

func (p Pass) String() string {
	if p < 0 || int(p) >= len(passNames) {
		return "unknown"
	}
	return passNames[p]
}

// Progress observes the analysis. Begin is called once per pass with the
// amount of work in that pass, before any Advance for it.
type Progress interface {
	Begin(pass Pass, total int)
	Advance(pass Pass, n int)
}

type noProgress struct{}

func (noProgress) Begin(Pass, int)   {}
func (noProgress) Advance(Pass, int) {}
