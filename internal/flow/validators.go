package flow

import (
	"errors"
	"strconv"
	"strings"
)

// MinLen rejects trimmed input shorter than n runes.
func MinLen(n int, reprompt string) func(string) error {
	return func(text string) error {
		if len([]rune(strings.TrimSpace(text))) < n {
			return errors.New(reprompt)
		}

		return nil
	}
}

// Email requires an "@" with something on both sides.
func Email(reprompt string) func(string) error {
	return func(text string) error {
		text = strings.TrimSpace(text)

		at := strings.Index(text, "@")
		if at < 1 || at == len(text)-1 {
			return errors.New(reprompt)
		}

		return nil
	}
}

// PositiveAmount requires a parseable monetary value greater than zero.
// Accepts a comma as the decimal separator.
func PositiveAmount(reprompt string) func(string) error {
	return func(text string) error {
		text = strings.ReplaceAll(strings.TrimSpace(text), ",", ".")

		amount, err := strconv.ParseFloat(text, 64)
		if err != nil || amount <= 0 {
			return errors.New(reprompt)
		}

		return nil
	}
}
