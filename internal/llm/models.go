package llm

import (
	"sort"
	"strings"
)

const (
	// DefaultFastModel is picked for anything that looks like a flash model.
	DefaultFastModel = "gemini-2.5-flash"
	// DefaultProModel is picked for anything that looks like a pro model.
	DefaultProModel = "gemini-2.5-pro"
	// DefaultModel is the last-resort model name.
	DefaultModel = DefaultFastModel
)

// SupportedModels lists every model name NormalizeModel can return.
var SupportedModels = []string{
	"gemini-2.5-pro",
	"gemini-2.5-flash",
	"gemini-2.5-flash-lite",
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-1.5-pro",
	"gemini-1.5-flash",
	"gemini-1.5-flash-8b",
}

var modelAliases = map[string]string{
	"flash":             DefaultFastModel,
	"pro":               DefaultProModel,
	"flash-lite":        "gemini-2.5-flash-lite",
	"lite":              "gemini-2.5-flash-lite",
	"gemini-flash":      DefaultFastModel,
	"gemini-pro":        DefaultProModel,
	"gemini-flash-lite": "gemini-2.5-flash-lite",
	"gemini":            DefaultModel,
}

// supported ids sorted longest first so "gemini-2.0-flash-lite" wins over
// "gemini-2.0-flash" when both are substrings of the input.
var longestFirst = func() []string {
	ids := append([]string(nil), SupportedModels...)
	sort.SliceStable(ids, func(i, j int) bool { return len(ids[i]) > len(ids[j]) })
	return ids
}()

// NormalizeModel maps a free-form model identifier ("flash", "models/
// gemini-1.5-pro-latest", "Gemini-2.0-Flash-001") onto a supported model.
// It never fails and NormalizeModel(NormalizeModel(x)) == NormalizeModel(x).
func NormalizeModel(name string) string {
	n := strings.TrimSpace(name)
	if i := strings.LastIndex(n, "/"); i >= 0 {
		n = n[i+1:]
	}
	n = strings.ToLower(strings.TrimSpace(n))
	n = strings.TrimSuffix(n, "-latest")

	if n == "" {
		return DefaultModel
	}
	if m, ok := modelAliases[n]; ok {
		return m
	}
	for _, id := range SupportedModels {
		if n == id {
			return id
		}
	}
	for _, id := range longestFirst {
		if strings.Contains(n, id) {
			return id
		}
	}
	// partial version strings such as "2.0-flash" or "1.5-pro"
	if strings.ContainsAny(n, "0123456789") {
		for i := len(longestFirst) - 1; i >= 0; i-- {
			if strings.Contains(longestFirst[i], n) {
				return longestFirst[i]
			}
		}
	}

	switch {
	case strings.Contains(n, "flash"):
		return DefaultFastModel
	case strings.Contains(n, "pro"):
		return DefaultProModel
	}
	return DefaultModel
}

// IsSupportedModel reports whether name is one of SupportedModels.
func IsSupportedModel(name string) bool {
	for _, id := range SupportedModels {
		if id == name {
			return true
		}
	}
	return false
}
