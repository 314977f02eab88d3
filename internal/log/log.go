// Package log provides the leveled debug logger used across the
// orchestration layer. Output goes to stderr so it never mixes with
// API responses.
package log

import (
	"fmt"
	"os"
	"sync/atomic"
)

// Level controls how much debug output is emitted.
type Level int32

const (
	Off Level = iota
	Basic
	Detailed
	Trace
	Wire
)

var current atomic.Int32

// LevelFromInt clamps an integer (e.g. a -v count or config value) to a Level.
func LevelFromInt(i int) Level {
	if i <= 0 {
		return Off
	}
	if i >= int(Wire) {
		return Wire
	}
	return Level(i)
}

// SetLevel sets the global debug level.
func SetLevel(l Level) {
	current.Store(int32(l))
}

// CurrentLevel returns the active debug level.
func CurrentLevel() Level {
	return Level(current.Load())
}

// Log always writes, regardless of level. Use for warnings that should
// never be silenced.
func Log(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}

// Debug writes only when the global level is at or above l.
func Debug(l Level, format string, args ...any) {
	if CurrentLevel() >= l {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
