// Package statepaths resolves the on-disk locations of the persisted state
// files from viper configuration.
package statepaths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	PublishLedgerFilename = "publish_ledger.json"
	ReplyLedgerFilename   = "reply_ledger.json"
	RateStateFilename     = "rate_state.json"
)

// StateDir returns the expanded state directory.
func StateDir() string {
	return expandHome(strings.TrimSpace(viper.GetString("state_dir")))
}

func PublishLedgerPath() string {
	return filepath.Join(StateDir(), PublishLedgerFilename)
}

func ReplyLedgerPath() string {
	return filepath.Join(StateDir(), ReplyLedgerFilename)
}

func RateStatePath() string {
	return filepath.Join(StateDir(), RateStateFilename)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err == nil && home != "" {
			if p == "~" {
				return home
			}
			return filepath.Join(home, p[2:])
		}
	}
	if p == "" {
		return "."
	}
	return p
}
