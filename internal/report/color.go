package report

import (
	"fmt"
	"math"

	"github.com/fatih/color"
)

// ColorHelper provides utilities for coloring report output
type ColorHelper struct {
	enabled bool
}

// NewColorHelper creates a new color helper
// Colors are enabled only when outputting to a terminal
func NewColorHelper() *ColorHelper {
	return &ColorHelper{
		enabled: !color.NoColor,
	}
}

// Success returns green colored text
func (c *ColorHelper) Success(text string) string {
	if !c.enabled {
		return text
	}
	return color.GreenString(text)
}

// Failure returns red colored text
func (c *ColorHelper) Failure(text string) string {
	if !c.enabled {
		return text
	}
	return color.RedString(text)
}

// Warning returns yellow colored text
func (c *ColorHelper) Warning(text string) string {
	if !c.enabled {
		return text
	}
	return color.YellowString(text)
}

// Muted returns gray colored text
func (c *ColorHelper) Muted(text string) string {
	if !c.enabled {
		return text
	}
	return color.New(color.FgHiBlack).Sprint(text)
}

// Site returns bold blue text used for site names
func (c *ColorHelper) Site(text string) string {
	if !c.enabled {
		return text
	}
	return color.New(color.FgBlue, color.Bold).Sprint(text)
}

// Header returns bold cyan text for section headers
func (c *ColorHelper) Header(text string) string {
	if !c.enabled {
		return text
	}
	return color.New(color.FgCyan, color.Bold).Sprint(text)
}

// FormatScore colors a 0-100 score the way Lighthouse does:
// green from 90, yellow from 50, red below. The placeholder stays muted.
func (c *ColorHelper) FormatScore(value float64, valid bool) string {
	if !valid {
		return c.Muted("-")
	}

	rounded := math.Round(value)
	text := fmt.Sprintf("%.0f", rounded)
	switch {
	case rounded >= 90:
		return c.Success(text)
	case rounded >= 50:
		return c.Warning(text)
	default:
		return c.Failure(text)
	}
}
