package log

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Level is the severity scale used in stored messages, 1 (Debug) to 5 (Critical).
type Level int

const (
	LevelDebug Level = iota + 1
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

var levelNames = map[Level]string{
	LevelDebug:    "Debug",
	LevelInfo:     "Info",
	LevelWarning:  "Warning",
	LevelError:    "Error",
	LevelCritical: "Critical",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel accepts the PascalCase level names. Empty defaults to Error.
func ParseLevel(s string) (Level, error) {
	if s == "" {
		return LevelError, nil
	}
	for l, name := range levelNames {
		if name == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("invalid logging level: %s. Valid choices are: Debug, Info, Warning, Error, Critical", s)
}

// Zerolog maps the level onto zerolog's scale.
func (l Level) Zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarning:
		return zerolog.WarnLevel
	case LevelCritical:
		return zerolog.FatalLevel
	default:
		return zerolog.ErrorLevel
	}
}
