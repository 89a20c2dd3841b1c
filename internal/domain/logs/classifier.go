package logs

import (
	"strings"

	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

var (
	embeddedError   = []string{"] error "}
	embeddedWarn    = []string{"] warn ", "] warning "}
	embeddedInfo    = []string{"] info "}
	leadingError    = []string{"error ", "error:"}
	leadingWarn     = []string{"warn ", "warn:", "warning ", "warning:"}
	leadingInfo     = []string{"info ", "info:"}
	errorIndicators = []string{
		" error:",
		"fatal:",
		"panic",
		"traceback",
		"uncaught exception",
		"exception:",
		"errored out",
		"failed to",
		"spawn failed",
		"connection refused",
		"no such file or directory",
		"permission denied",
		"segmentation fault",
		"out of memory",
		"timed out",
		" econnrefused",
		" enoent",
		" eacces",
	}
	warnIndicators = []string{" warning ", " deprecated"}

	// Banners and timing summaries that well-behaved tools print to stderr
	informationalPrefixes = []string{
		"ggml_",
		"main:",
		"srv ",
		"slot ",
		"llama_",
		"load_tensors:",
		"print_info:",
		"system info:",
		"system_info:",
		"common_init_from_params:",
		"load:",
		"build:",
		"prompt eval time",
		"eval time",
		"total time",
	}
	informationalPhrases = []string{
		"http server is listening",
		"model loaded",
		"all slots are idle",
	}
)

// DetectLevel classifies one output line. Explicit level markers win over
// generic indicators, and stderr lines default to warn unless they match a
// known informational banner.
func DetectLevel(line, stream string) types.Level {
	l := strings.ToLower(strings.TrimSpace(line))
	if l == "" {
		return types.LevelInfo
	}

	if level, ok := embeddedLevel(l); ok {
		return level
	}
	if looksLikeError(l) {
		return types.LevelError
	}
	if looksLikeWarning(l) {
		return types.LevelWarn
	}

	if stream == types.StreamStderr {
		if isInformational(l) {
			return types.LevelInfo
		}
		return types.LevelWarn
	}
	return types.LevelInfo
}

func embeddedLevel(l string) (types.Level, bool) {
	switch {
	case containsAny(l, embeddedError) || hasAnyPrefix(l, leadingError):
		return types.LevelError, true
	case containsAny(l, embeddedWarn) || hasAnyPrefix(l, leadingWarn):
		return types.LevelWarn, true
	case containsAny(l, embeddedInfo) || hasAnyPrefix(l, leadingInfo):
		return types.LevelInfo, true
	}
	return "", false
}

func looksLikeError(l string) bool {
	return strings.HasPrefix(l, "error:") || containsAny(l, errorIndicators)
}

func looksLikeWarning(l string) bool {
	return hasAnyPrefix(l, []string{"warn:", "warning:"}) || containsAny(l, warnIndicators)
}

func isInformational(l string) bool {
	return hasAnyPrefix(l, informationalPrefixes) || containsAny(l, informationalPhrases)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
