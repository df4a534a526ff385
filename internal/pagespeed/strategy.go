package pagespeed

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy is the analysis profile requested from the service.
type Strategy string

const (
	// StrategyMobile analyzes the page as a mobile device.
	StrategyMobile Strategy = "MOBILE"
	// StrategyDesktop analyzes the page as a desktop browser.
	StrategyDesktop Strategy = "DESKTOP"
)

// ErrInvalidStrategy is returned for a strategy other than mobile or desktop.
var ErrInvalidStrategy = errors.New("invalid strategy")

// ParseStrategy parses a strategy name, case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToUpper(strings.TrimSpace(s))) {
	case StrategyMobile:
		return StrategyMobile, nil
	case StrategyDesktop:
		return StrategyDesktop, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStrategy, s)
	}
}

// Label returns the human-facing name of the strategy.
func (s Strategy) Label() string {
	if s == StrategyDesktop {
		return "Desktop"
	}

	return "Mobile"
}
