package config

import (
	"os"
	"strconv"
)

// IsDebug reports MNEMO_DEBUG as a boolean ("1", "true", "TRUE", ...). It is
// read before any .env is loaded so the --debug default reflects the shell.
func IsDebug() bool {
	v, err := strconv.ParseBool(os.Getenv("MNEMO_DEBUG"))
	return err == nil && v
}
