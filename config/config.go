// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads the networks the keeper suite can run against.
package config

import (
	"bytes"
	"fmt"
	"io"
	"math/big"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/gurufinglobal/guruxkeeper/revert"
)

// NetworkEnv selects the network when no name is given.
const NetworkEnv = "KEEPER_NETWORK"

const defaultTimeout = 20 * time.Second

// Network is one execution environment. A network without URL is the in-process chain.
type Network struct {
	Name     string        `yaml:"-"`
	URL      string        `yaml:"url"`
	Timeout  time.Duration `yaml:"timeout"`
	GasPrice uint64        `yaml:"gasPrice"` // wei, zero for the node default
}

// Backend returns the discriminator of the errors reported by the network.
func (n *Network) Backend() revert.Backend {
	return revert.Backend(n.Name)
}

// GasPriceWei returns the configured gas price, nil for the node default.
func (n *Network) GasPriceWei() *big.Int {
	if n.GasPrice == 0 {
		return nil
	}
	return new(big.Int).SetUint64(n.GasPrice)
}

// IsLocal returns true if the network runs in process.
func (n *Network) IsLocal() bool {
	return n.URL == ""
}

type Config struct {
	DefaultNetwork string              `yaml:"defaultNetwork"`
	Networks       map[string]*Network `yaml:"networks"`
}

// Default returns a config with the solo network only.
func Default() *Config {
	cfg := &Config{
		DefaultNetwork: revert.Local.String(),
		Networks: map[string]*Network{
			revert.Local.String(): {},
		},
	}
	if err := cfg.normalize(); err != nil {
		panic(err)
	}
	return cfg
}

// Load reads a YAML config file. The solo network is always present.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return Parse(data)
}

// Parse decodes a YAML config.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	if c.Networks == nil {
		c.Networks = make(map[string]*Network)
	}
	if c.Networks[revert.Local.String()] == nil {
		c.Networks[revert.Local.String()] = &Network{}
	}
	for name, n := range c.Networks {
		if n == nil {
			n = &Network{}
			c.Networks[name] = n
		}
		n.Name = name
		if n.IsLocal() && !revert.Backend(name).IsLocal() {
			return fmt.Errorf("network %s: missing url", name)
		}
		if n.Timeout == 0 {
			n.Timeout = defaultTimeout
		}
	}
	if c.DefaultNetwork == "" {
		c.DefaultNetwork = revert.Local.String()
	}
	if _, ok := c.Networks[c.DefaultNetwork]; !ok {
		return fmt.Errorf("default network %s not defined", c.DefaultNetwork)
	}
	return nil
}

// Select returns the named network. An empty name falls back to $KEEPER_NETWORK,
// then to the default network.
func (c *Config) Select(name string) (*Network, error) {
	if name == "" {
		name = os.Getenv(NetworkEnv)
	}
	if name == "" {
		name = c.DefaultNetwork
	}
	n, ok := c.Networks[name]
	if !ok {
		return nil, fmt.Errorf("network %s not defined", name)
	}
	return n, nil
}
