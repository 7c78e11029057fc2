package coremain

import (
	"github.com/pmkol/poollist/mlog"
)

const (
	defaultMaxHeads = 10
	defaultMaxNodes = 100
)

type Config struct {
	Log     mlog.LogConfig `yaml:"log"`
	Include []string       `yaml:"include"`

	Pool PoolConfig `yaml:"pool"`

	// Isolate gives every script its own context and runs them concurrently.
	// Otherwise all scripts run in order on one shared context.
	Isolate       bool     `yaml:"isolate"`
	ExprCacheSize int      `yaml:"expr_cache_size"`
	Scripts       []string `yaml:"scripts"`

	// Watch reruns all scripts whenever one of the files changes.
	Watch bool `yaml:"watch"`

	API APIConfig `yaml:"api"`
}

// PoolConfig sets the capacities of a list context.
type PoolConfig struct {
	MaxHeads int `yaml:"max_heads"`
	MaxNodes int `yaml:"max_nodes"`
}

func (c PoolConfig) heads() int {
	if c.MaxHeads <= 0 {
		return defaultMaxHeads
	}
	return c.MaxHeads
}

func (c PoolConfig) nodes() int {
	if c.MaxNodes <= 0 {
		return defaultMaxNodes
	}
	return c.MaxNodes
}

type APIConfig struct {
	HTTP string `yaml:"http"`
}
