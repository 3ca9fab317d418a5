package maincmd

import (
	"github.com/caarlos0/env/v6"

	"github.com/pellmell/wbc/lang/compiler"
)

// Config holds the knobs the driver exposes beyond its command-line flags,
// populated from WBC_-prefixed environment variables the same way the
// teacher's mainer.Parser reads EnvPrefix-scoped flags.
type Config struct {
	// Target selects the bytecode dialect Compile targets (spec.md §9.4).
	Target string `env:"TARGET" envDefault:"2.0.0"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "WBC_"}); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) version() compiler.Version {
	if cfg.Target == "2.1.0" {
		return compiler.V2_1_0
	}
	return compiler.V2_0_0
}
