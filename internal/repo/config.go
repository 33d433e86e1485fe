package repo

import (
	"time"
)

type Kind string

const (
	KindMongo  Kind = "mongo"
	KindMemory Kind = "memory"
)

type Config struct {
	Kind   Kind         `yaml:"kind"`
	Mongo  MongoConfig  `yaml:"mongo"`
	Memory MemoryConfig `yaml:"memory"`
}

type MongoConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`

	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`

	// Transactions need a replica set or a sharded cluster.
	Transactions bool `yaml:"transactions"`

	Auth struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"auth"`

	Pool struct {
		MinSize uint64 `yaml:"minSize"`
		MaxSize uint64 `yaml:"maxSize"`
	} `yaml:"pool"`
}

type MemoryConfig struct {
	// Snapshot is a JSON file the data is loaded from on start and saved to
	// every Interval and on close. Empty disables persistence.
	Snapshot string        `yaml:"snapshot"`
	Interval time.Duration `yaml:"interval"`
}
