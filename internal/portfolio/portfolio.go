// Package portfolio loads the static instrument universe from a YAML file.
// The universe is read once per process and treated as read-only.
package portfolio

import (
	"fmt"
	"os"

	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/domain"

	"gopkg.in/yaml.v3"
)

// Portfolio is the configured instrument universe, one list per asset class.
type Portfolio struct {
	Stocks []domain.Instrument `yaml:"stocks"`
	Crypto []domain.Instrument `yaml:"crypto"`
	Bonds  []domain.Instrument `yaml:"bonds"`
	Gold   []domain.Instrument `yaml:"gold"`
}

// Load reads and parses the portfolio file.
func Load(path string) (*Portfolio, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read portfolio: %w", err)
	}

	var p Portfolio
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse portfolio: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validate portfolio: %w", err)
	}
	return &p, nil
}

// Instruments returns the configured list for an asset class, preserving file
// order. An unknown class yields an empty list.
func (p *Portfolio) Instruments(class domain.AssetClass) []domain.Instrument {
	switch class {
	case domain.ClassStock:
		return p.Stocks
	case domain.ClassCrypto:
		return p.Crypto
	case domain.ClassBond:
		return p.Bonds
	case domain.ClassGold:
		return p.Gold
	}
	return nil
}

// Validate rejects instruments without a symbol. Empty class lists are legal:
// a batch over an empty list simply yields an empty result.
func (p *Portfolio) Validate() error {
	for _, class := range domain.AssetClasses {
		for i, inst := range p.Instruments(class) {
			if inst.Symbol == "" {
				return fmt.Errorf("%s[%d]: missing symbol", class, i)
			}
		}
	}
	return nil
}
