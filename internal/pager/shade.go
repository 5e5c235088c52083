package pager

import (
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const (
	// DefaultProbeTimeout bounds the terminal background query.
	DefaultProbeTimeout = 150 * time.Millisecond

	defaultBackground = "#1c1c1c"
	accentColor       = "#8b5cf6"
)

// Blend ratios toward the accent, weakest first.
var shadeRatios = [fadeSteps]float64{0.10, 0.22, 0.35}

// Shades are the glow backgrounds for fade steps 1..fadeSteps.
type Shades [fadeSteps]lipgloss.Color

// For returns the background for a fade step, and false for step 0.
func (s Shades) For(step int) (lipgloss.Color, bool) {
	if step < 1 || step > fadeSteps {
		return "", false
	}
	return s[step-1], true
}

// NewShades blends bg toward accent in Lab space.
func NewShades(bg, accent colorful.Color) Shades {
	var s Shades
	for i, ratio := range shadeRatios {
		s[i] = lipgloss.Color(bg.BlendLab(accent, ratio).Clamped().Hex())
	}
	return s
}

// DefaultShades probes the terminal background and blends it toward the
// accent colour.
func DefaultShades(timeout time.Duration) Shades {
	accent, _ := colorful.Hex(accentColor)
	return NewShades(ProbeBackground(timeout), accent)
}

// ProbeBackground asks the terminal for its background colour. It returns a
// dark default when stdout is not a terminal or the terminal does not answer
// within timeout. It never returns while the query still holds the terminal.
func ProbeBackground(timeout time.Duration) colorful.Color {
	fallback, _ := colorful.Hex(defaultBackground)
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fallback
	}
	return probeWith(queryBackground, timeout, fallback)
}

func queryBackground() (colorful.Color, bool) {
	bg := termenv.NewOutput(os.Stdout).BackgroundColor()
	if bg == nil {
		return colorful.Color{}, false
	}
	return termenv.ConvertToRGB(bg), true
}

// probeWith runs query, taking fallback when the answer is later than
// timeout. The query changes terminal modes until it returns, so a late
// query is waited out before returning; termenv bounds it by its own OSC
// timeout.
func probeWith(query func() (colorful.Color, bool), timeout time.Duration, fallback colorful.Color) colorful.Color {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	type answer struct {
		c  colorful.Color
		ok bool
	}
	done := make(chan answer, 1)
	go func() {
		c, ok := query()
		done <- answer{c, ok}
	}()

	select {
	case a := <-done:
		if a.ok {
			return a.c
		}
		return fallback
	case <-time.After(timeout):
		logger.Debug("Terminal background probe timed out, using default")
		<-done
		return fallback
	}
}
