package notation

import (
	"strconv"
	"strings"

	"github.com/YuminosukeSato/scifit/pkg/errors"
)

// Style selects how the uncertainty is written next to the value.
type Style int

const (
	// StyleStandard writes "(m_x \pm m_dx)e+NN" with both mantissas at the exponent of x.
	StyleStandard Style = iota
	// StyleCompact writes "m_x(uu)e+NN", the uncertainty applying to the last digits of x.
	StyleCompact
)

// String returns the canonical name of the style.
func (s Style) String() string {
	switch s {
	case StyleStandard:
		return "standard"
	case StyleCompact:
		return "compact"
	default:
		return "Style(" + strconv.Itoa(int(s)) + ")"
	}
}

// ParseStyle accepts "standard" (or "std") and "compact" (or "nist"), ignoring case.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "std":
		return StyleStandard, nil
	case "compact", "nist":
		return StyleCompact, nil
	default:
		return StyleStandard, errors.NewUnknownStyleError(s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Style) MarshalText() ([]byte, error) {
	if s != StyleStandard && s != StyleCompact {
		return nil, errors.NewUnknownStyleError(s.String())
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so a Style can be read
// from configuration files and flags by name.
func (s *Style) UnmarshalText(text []byte) error {
	parsed, err := ParseStyle(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
