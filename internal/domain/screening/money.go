package screening

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseBRL converts "75.000,00" into centavos. Thousands separators are
// dropped and the comma is the decimal point.
func ParseBRL(s string) (int64, error) {
	whole, frac, ok := strings.Cut(strings.ReplaceAll(s, ".", ""), ",")
	if !ok || len(frac) != 2 || whole == "" {
		return 0, fmt.Errorf("malformed amount %q", s)
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed amount %q: %w", s, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed amount %q: %w", s, err)
	}
	if w > (1<<63-1-f)/100 {
		return 0, fmt.Errorf("amount %q out of range", s)
	}
	return w*100 + f, nil
}

// FormatBRL renders centavos as "59.906,02".
func FormatBRL(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	out := fmt.Sprintf("%s,%02d", b.String(), cents%100)
	if neg {
		return "-" + out
	}
	return out
}
