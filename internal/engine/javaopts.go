package engine

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// JVM properties that silence the engine's logging backends; the engine has
// no first-class quiet switch of its own.
var silentJavaOptions = []string{
	"-Dorg.slf4j.simpleLogger.defaultLogLevel=off",
	"-Dorg.apache.commons.logging.Log=org.apache.commons.logging.impl.NoOpLog",
}

// effectiveJavaOptions expands user-supplied JVM options with the
// invocation-time ones: headless mode on macOS (the engine otherwise steals
// window focus on every call), a UTF-8 file encoding default, and the
// silence properties when requested.
func effectiveJavaOptions(base []string, silent bool, charset string) []string {
	opts := append([]string(nil), base...)
	if runtime.GOOS == "darwin" && !anyContains(opts, "java.awt.headless") {
		opts = append(opts, "-Djava.awt.headless=true")
	}
	if isUTF8(charset) && !anyContains(opts, "file.encoding") {
		opts = append(opts, "-Dfile.encoding=UTF8")
	}
	if silent {
		opts = append(opts, silentJavaOptions...)
	}
	return opts
}

// stripSilent removes the injected silence properties so that boot-option
// comparisons ignore them.
func stripSilent(opts []string) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		if o == silentJavaOptions[0] || o == silentJavaOptions[1] {
			continue
		}
		out = append(out, o)
	}
	return out
}

func anyContains(opts []string, sub string) bool {
	for _, o := range opts {
		if strings.Contains(o, sub) {
			return true
		}
	}
	return false
}

func isUTF8(charset string) bool {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

// decodeCharset transcodes engine output from the configured charset to
// UTF-8. UTF-8 passes through untouched.
func decodeCharset(b []byte, charset string) ([]byte, error) {
	if isUTF8(charset) {
		return b, nil
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unknown charset %q", charset)
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), b)
	if err != nil {
		return nil, fmt.Errorf("decode %s output: %w", charset, err)
	}
	return out, nil
}
