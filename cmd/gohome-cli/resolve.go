package main

import (
	"fmt"
	"sort"
	"strings"
)

// fanAliases maps the names people use for suction levels to fan levels.
var fanAliases = map[string]string{
	"min":      "min",
	"low":      "low",
	"silent":   "low",
	"quiet":    "low",
	"medium":   "medium",
	"normal":   "medium",
	"balanced": "medium",
	"high":     "high",
	"turbo":    "high",
	"max":      "max",
	"max plus": "max",
	"mop":      "mop",
}

// normalizeName folds case and separators so "Max-Plus" and "max plus" compare equal.
func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer(" ", "_", "-", "_").Replace(name)
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	return name
}

func resolveFanLevel(input string) (string, error) {
	needle := normalizeName(input)
	for alias, level := range fanAliases {
		if normalizeName(alias) == needle {
			return level, nil
		}
	}
	available := make([]string, 0, len(fanAliases))
	for alias := range fanAliases {
		available = append(available, alias)
	}
	sort.Strings(available)
	return "", fmt.Errorf("fan speed %q not found. Available: %s", input, strings.Join(available, ", "))
}

func parseOnOff(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on|off, got %q", value)
}
