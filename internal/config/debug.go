package config

import "os"

func IsDebug() bool {
	return os.Getenv("CTXBROKER_DEBUG") == "1"
}
