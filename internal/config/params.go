package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aman-zulfiqar/leverage-sdk/internal/borrow"
	"github.com/aman-zulfiqar/leverage-sdk/internal/constants"
)

// ProtocolParams are the on-chain program parameters the SDK mirrors. They
// change only with a program upgrade, so they live in a file rather than env.
// Every bps value in the file, including the borrow curve, is read against
// PercentScale.
type ProtocolParams struct {
	PercentScale       uint64        `yaml:"percent_scale"`
	Borrow             borrow.Params `yaml:"borrow_curve"`
	DefaultSlippageBps uint64        `yaml:"default_slippage_bps"`
}

func DefaultProtocolParams() ProtocolParams {
	return ProtocolParams{
		PercentScale:       constants.PercentScale,
		Borrow:             borrow.DefaultParams(),
		DefaultSlippageBps: constants.DefaultSlippageBps,
	}
}

// LoadProtocolParams reads params from a YAML file. Keys missing from the file
// keep their default values. An empty path returns the defaults.
func LoadProtocolParams(path string) (ProtocolParams, error) {
	p := DefaultProtocolParams()
	if path == "" {
		return p, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return ProtocolParams{}, fmt.Errorf("read protocol params: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return ProtocolParams{}, fmt.Errorf("parse protocol params %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return ProtocolParams{}, fmt.Errorf("protocol params %s: %w", path, err)
	}
	return p, nil
}

func (p ProtocolParams) Validate() error {
	if p.PercentScale == 0 {
		return errors.New("percent_scale must be > 0")
	}
	if p.DefaultSlippageBps >= p.PercentScale {
		return fmt.Errorf("default_slippage_bps %d must be below percent_scale %d", p.DefaultSlippageBps, p.PercentScale)
	}
	return p.Borrow.Validate(p.PercentScale)
}
