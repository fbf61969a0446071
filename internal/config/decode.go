package config

import (
	"github.com/spf13/pflag"
)

// DecodeConfig holds configuration for the offline decode command.
type DecodeConfig struct {
	RPCURL   string
	In       string
	ABIFiles []string
	Out      string
	LogLevel string
}

// LoadDecode merges config file, environment variables, and flags into
// DecodeConfig.
func LoadDecode(cfgFile string, flags *pflag.FlagSet) (DecodeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"out":       "./data/decoded.jsonl",
		"log-level": "info",
	})
	if err != nil {
		return DecodeConfig{}, err
	}

	cfg := DecodeConfig{
		RPCURL:   v.GetString("rpc"),
		In:       v.GetString("in"),
		ABIFiles: getStringSlice(v, "abi"),
		Out:      v.GetString("out"),
		LogLevel: v.GetString("log-level"),
	}

	return cfg, nil
}
