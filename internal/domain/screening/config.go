package screening

// Config carries the rule parameters. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	// InstitutionalTerms exclude capitalised phrases from the repeated-name rule.
	InstitutionalTerms []string `yaml:"institutionalTerms" json:"institutional_terms"`
	// SuspiciousTerms are the sensitive administrative phrases.
	SuspiciousTerms []string `yaml:"suspiciousTerms" json:"suspicious_terms"`
	// WaiverPhrase enables the procurement threshold audit.
	WaiverPhrase string `yaml:"waiverPhrase" json:"waiver_phrase"`
	// WaiverCeilingCents is the statutory ceiling in centavos.
	WaiverCeilingCents int64 `yaml:"waiverCeilingCents" json:"waiver_ceiling_cents"`
	// IdentifierPattern matches an official document number in lower-cased text.
	IdentifierPattern string `yaml:"identifierPattern" json:"identifier_pattern"`
	// MandatoryTerms is the alternative structural requirement. Empty disables it.
	MandatoryTerms []string `yaml:"mandatoryTerms" json:"mandatory_terms"`

	MarkOpen  string `yaml:"markOpen" json:"mark_open"`
	MarkClose string `yaml:"markClose" json:"mark_close"`
}

// DefaultWaiverCeilingCents is R$ 59.906,02, the waiver limit for service contracts.
const DefaultWaiverCeilingCents int64 = 5990602

func DefaultConfig() Config {
	return Config{
		InstitutionalTerms: []string{
			"campus", "instituto", "secretaria", "prefeitura", "comissão", "diretoria",
			"coordenação", "avaliação", "serviços", "companhia", "programa", "nacional",
			"reitoria", "universidade", "federal", "estadual", "municipal", "ministério",
			"departamento", "câmara", "conselho", "fundação", "tribunal", "procuradoria",
			"controladoria", "gabinete", "governo", "república", "superintendência",
			"assessoria", "gerência", "divisão", "núcleo", "licitação", "pregão",
			"edital", "contrato", "portaria", "ofício", "processo",
		},
		SuspiciousTerms: []string{
			"dispensa de licitação",
			"caráter de urgência",
			"pagamento retroativo",
			"inexigibilidade de licitação",
		},
		WaiverPhrase:       "dispensa de licitação",
		WaiverCeilingCents: DefaultWaiverCeilingCents,
		IdentifierPattern:  `(of[íi]cio|processo|portaria)\s+n[ºo°.]`,
		MarkOpen:           "<mark>",
		MarkClose:          "</mark>",
	}
}

// withDefaults fills unset fields so a partially configured rule set still works.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.InstitutionalTerms == nil {
		c.InstitutionalTerms = d.InstitutionalTerms
	}
	if c.SuspiciousTerms == nil {
		c.SuspiciousTerms = d.SuspiciousTerms
	}
	if c.WaiverPhrase == "" {
		c.WaiverPhrase = d.WaiverPhrase
	}
	if c.WaiverCeilingCents <= 0 {
		c.WaiverCeilingCents = d.WaiverCeilingCents
	}
	if c.IdentifierPattern == "" {
		c.IdentifierPattern = d.IdentifierPattern
	}
	if c.MarkOpen == "" || c.MarkClose == "" {
		c.MarkOpen, c.MarkClose = d.MarkOpen, d.MarkClose
	}
	return c
}
