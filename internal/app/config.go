package app

import "time"

// Config holds runtime configuration for a Reader.
type Config struct {
	// Engine
	JarPath         string
	JavaCommand     string
	JavaOptions     []string
	Encoding        string
	Silent          bool
	ForceSubprocess bool

	// Input retrieval
	UserAgent       string
	TempDir         string
	DownloadTimeout time.Duration

	// Behavior
	Verbose bool
}
