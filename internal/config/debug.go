package config

import "os"

func IsDebug() bool {
	return os.Getenv("ADVISOR_DEBUG") == "1"
}
