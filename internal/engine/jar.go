package engine

import (
	"os"
	"path/filepath"
)

const engineVersion = "1.0.5"

// EnvJar overrides the path to the engine's packaged jar artifact.
const EnvJar = "TABULA_JAR"

var jarName = "tabula-" + engineVersion + "-jar-with-dependencies.jar"

// JarPath resolves the engine jar: the TABULA_JAR environment variable when
// set, otherwise the jar shipped next to the executable.
func JarPath() string {
	if p := os.Getenv(EnvJar); p != "" {
		return p
	}
	if exe, err := os.Executable(); err == nil {
		return filepath.Join(filepath.Dir(exe), jarName)
	}
	return jarName
}
