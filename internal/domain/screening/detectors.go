package screening

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
)

// Rule IDs, in execution order.
const (
	RuleRepeatedName   = "R1_repeated_name"
	RuleInvalidDate    = "R2_invalid_date"
	RuleSuspiciousTerm = "R3_suspicious_term"
	RuleStructure      = "R4_missing_structure"
	RuleWaiverCeiling  = "R5_waiver_ceiling"
)

// Detector is a pure rule over one normalized text.
type Detector interface {
	ID() string
	Detect(t Text) []analysis.Finding
}

// ==== R1 ====

// tokens are joined by spaces or tabs only; a name never spans a line break
var nameRx = regexp.MustCompile(`\p{Lu}\p{Ll}+(?:[ \t]+\p{Lu}\p{Ll}+)+`)

type repeatedNames struct {
	excluded []string // folded
}

func newRepeatedNames(terms []string) *repeatedNames {
	d := &repeatedNames{}
	for _, t := range terms {
		if f := Fold(strings.TrimSpace(t)); f != "" {
			d.excluded = append(d.excluded, f)
		}
	}
	return d
}

func (d *repeatedNames) ID() string { return RuleRepeatedName }

// Detect flags capitalised multi-word names seen more than once. The
// exclusion test is a substring match, so a surname that contains an
// institutional term is dropped too.
func (d *repeatedNames) Detect(t Text) []analysis.Finding {
	counts := map[string]int{}
	var order []string
	for _, name := range nameRx.FindAllString(t.Original, -1) {
		if d.institutional(name) {
			continue
		}
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}

	var out []analysis.Finding
	for _, name := range order {
		n := counts[name]
		if n < 2 {
			continue
		}
		out = append(out, analysis.Finding{
			RuleID:      RuleRepeatedName,
			Severity:    analysis.SeverityMedium,
			Message:     fmt.Sprintf("Alerta de Nepotismo: nome repetido no documento: %s (%d)", name, n),
			MatchedSpan: name,
		})
	}
	return out
}

func (d *repeatedNames) institutional(name string) bool {
	f := Fold(name)
	for _, term := range d.excluded {
		if strings.Contains(f, term) {
			return true
		}
	}
	return false
}

// ==== R2 ====

var dateRx = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)

type invalidDates struct{}

func (invalidDates) ID() string { return RuleInvalidDate }

// Detect only checks ranges: day 1..31, month 1..12. 30/02 passes.
func (invalidDates) Detect(t Text) []analysis.Finding {
	var out []analysis.Finding
	for _, date := range dateRx.FindAllString(t.Original, -1) {
		day, err := strconv.Atoi(date[0:2])
		if err != nil {
			continue
		}
		month, err := strconv.Atoi(date[3:5])
		if err != nil {
			continue
		}
		if month > 12 || day > 31 || month == 0 || day == 0 {
			out = append(out, analysis.Finding{
				RuleID:      RuleInvalidDate,
				Severity:    analysis.SeverityHigh,
				Message:     fmt.Sprintf("Possível adulteração: a data '%s' é inválida.", date),
				MatchedSpan: date,
			})
		}
	}
	return out
}

// ==== R3 ====

type suspiciousTerms struct {
	terms []string
}

func (d *suspiciousTerms) ID() string { return RuleSuspiciousTerm }

// Detect emits one finding per distinct phrase, not per occurrence.
func (d *suspiciousTerms) Detect(t Text) []analysis.Finding {
	var out []analysis.Finding
	seen := map[string]bool{}
	for _, term := range d.terms {
		key := Fold(term)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		literal, ok := t.First(term)
		if !ok {
			continue
		}
		out = append(out, analysis.Finding{
			RuleID:      RuleSuspiciousTerm,
			Severity:    analysis.SeverityMedium,
			Message:     fmt.Sprintf("Alerta de Termo Sensível: a expressão '%s' foi encontrada.", term),
			MatchedSpan: literal,
		})
	}
	return out
}

// ==== R4 ====

type structure struct {
	identifier *regexp.Regexp
	mandatory  []string
}

func newStructure(pattern string, mandatory []string) (*structure, error) {
	rx, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("identifier pattern: %w", err)
	}
	d := &structure{identifier: rx}
	for _, m := range mandatory {
		if m = strings.TrimSpace(m); m != "" {
			d.mandatory = append(d.mandatory, m)
		}
	}
	return d, nil
}

func (d *structure) ID() string { return RuleStructure }

// Detect passes when the document carries an official identifier, or when
// every mandatory term is present. An empty term list never satisfies it.
func (d *structure) Detect(t Text) []analysis.Finding {
	if d.identifier.MatchString(t.Lower) {
		return nil
	}
	var missing []string
	for _, m := range d.mandatory {
		if !t.Contains(m) {
			missing = append(missing, m)
		}
	}
	if len(d.mandatory) > 0 && len(missing) == 0 {
		return nil
	}

	msg := "Alerta Estrutural: não foi encontrado um número de documento oficial (Ofício, Processo, Portaria)."
	if len(missing) > 0 {
		msg += " Termos obrigatórios ausentes: " + strings.Join(missing, ", ") + "."
	}
	return []analysis.Finding{{
		RuleID:   RuleStructure,
		Severity: analysis.SeverityLow,
		Message:  msg,
	}}
}

// ==== R5 ====

var amountRx = regexp.MustCompile(`R\$\s*(\d{1,3}(?:\.\d{3})*,\d{2})`)

type waiverCeiling struct {
	phrase       string
	ceilingCents int64
}

func (d *waiverCeiling) ID() string { return RuleWaiverCeiling }

// Detect audits amounts only when the document invokes the waiver.
func (d *waiverCeiling) Detect(t Text) []analysis.Finding {
	if !t.Contains(d.phrase) {
		return nil
	}
	var out []analysis.Finding
	for _, m := range amountRx.FindAllStringSubmatch(t.Original, -1) {
		cents, err := ParseBRL(m[1])
		if err != nil {
			continue
		}
		if cents <= d.ceilingCents {
			continue
		}
		out = append(out, analysis.Finding{
			RuleID:   RuleWaiverCeiling,
			Severity: analysis.SeverityHigh,
			Message: fmt.Sprintf("Alerta de Dispensa de Licitação: o valor %s excede o limite legal de R$ %s para contratação direta.",
				m[0], FormatBRL(d.ceilingCents)),
			MatchedSpan: m[0],
		})
	}
	return out
}
