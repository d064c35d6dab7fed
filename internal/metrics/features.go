// Package metrics derives cheap local text features for turn telemetry.
package metrics

import (
	"strings"
	"unicode/utf8"
)

// Features holds basic local text features derived from an input string.
type Features struct {
	Bytes int
	Runes int
	Words int
	Lines int
}

// TurnFeatures summarizes one completed turn.
type TurnFeatures struct {
	User       Features
	Answer     Features
	RoundTrips int
	ToolCalls  int
}

// CountFeatures computes byte, rune, word, and line counts for s.
// Lines is 0 for the empty string, otherwise 1 plus the number of '\n'.
func CountFeatures(s string) Features {
	f := Features{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: len(strings.Fields(s)),
	}
	if s != "" {
		f.Lines = 1 + strings.Count(s, "\n")
	}
	return f
}

func CountTurn(user, answer string, roundTrips, toolCalls int) TurnFeatures {
	return TurnFeatures{
		User:       CountFeatures(user),
		Answer:     CountFeatures(answer),
		RoundTrips: roundTrips,
		ToolCalls:  toolCalls,
	}
}
