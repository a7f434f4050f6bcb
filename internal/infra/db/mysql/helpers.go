package mysql

import (
	"encoding/json"
	"strings"

	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// validJSONOr returns s when it is valid JSON, otherwise wraps it as {"raw": s}.
// Empty input becomes "{}".
func validJSONOr(s string) string {
	if strings.TrimSpace(s) == "" {
		return "{}"
	}
	var js any
	if json.Unmarshal([]byte(s), &js) != nil {
		b, _ := json.Marshal(map[string]string{"raw": s})
		return string(b)
	}
	return s
}

func encodeFindings(f []domain.Finding) (string, error) {
	if f == nil {
		f = []domain.Finding{}
	}
	b, err := json.Marshal(f)
	return string(b), err
}

func decodeFindings(b []byte) ([]domain.Finding, error) {
	out := []domain.Finding{}
	if len(b) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func splitStatements(s string) []string {
	var out []string
	for _, stmt := range strings.Split(s, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
