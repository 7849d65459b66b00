package service

import (
	"github.com/spf13/viper"
)

// Options are the process wide settings of the service section. They can
// arrive from the config file, MAILDIVE_* environment variables or flags,
// viper merges all three.
type Options struct {
	Verbose bool   `mapstructure:"verbose"`
	Log     string `mapstructure:"log"`
}

func ParseOptions(key string) (Options, error) {
	var opts Options
	err := viper.UnmarshalKey(key, &opts)
	return opts, err
}
