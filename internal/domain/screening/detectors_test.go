package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
)

func detect(d Detector, text string) []analysis.Finding {
	return d.Detect(Normalize(text))
}

func TestRepeatedNames(t *testing.T) {
	d := newRepeatedNames(DefaultConfig().InstitutionalTerms)

	t.Run("repeated person name", func(t *testing.T) {
		got := detect(d, "Contratado: João Silva. Fiscal do contrato: João Silva.")
		require.Len(t, got, 1)
		assert.Equal(t, RuleRepeatedName, got[0].RuleID)
		assert.Contains(t, got[0].Message, "João Silva (2)")
		assert.Equal(t, "João Silva", got[0].MatchedSpan)
	})

	t.Run("institutional phrase excluded", func(t *testing.T) {
		got := detect(d, "Secretaria Municipal de Obras e Secretaria Municipal de Saúde.")
		assert.Empty(t, got)
	})

	t.Run("single occurrence", func(t *testing.T) {
		assert.Empty(t, detect(d, "Assinado por Maria Souza em sessão."))
	})

	t.Run("first occurrence order", func(t *testing.T) {
		got := detect(d, "Pedro Alves, Ana Lima, Ana Lima, Pedro Alves, Pedro Alves")
		require.Len(t, got, 2)
		assert.Contains(t, got[0].Message, "Pedro Alves (3)")
		assert.Contains(t, got[1].Message, "Ana Lima (2)")
	})

	t.Run("surname containing excluded term is dropped", func(t *testing.T) {
		// known false negative of the substring exclusion
		got := detect(d, "Carlos Campusano e Carlos Campusano")
		assert.Empty(t, got)
	})

	t.Run("capitalised word before a name joins the candidate", func(t *testing.T) {
		// known false negative: the greedy match yields two distinct candidates
		got := detect(d, "Contratado João Silva. Fiscal João Silva. Ofício nº 1")
		assert.Empty(t, got)
	})

	t.Run("name does not continue onto the next line", func(t *testing.T) {
		got := detect(d, "João Silva\nSecretaria. João Silva")
		require.Len(t, got, 1)
		assert.Equal(t, "João Silva", got[0].MatchedSpan)
		assert.Contains(t, got[0].Message, "João Silva (2)")
	})

	t.Run("tab separated tokens still form a name", func(t *testing.T) {
		got := detect(d, "Ana\tLima assinou. Ana\tLima conferiu.")
		require.Len(t, got, 1)
		assert.Equal(t, "Ana\tLima", got[0].MatchedSpan)
	})
}

func TestInvalidDates(t *testing.T) {
	d := invalidDates{}
	cases := []struct {
		date    string
		flagged bool
	}{
		{"31/13/2020", true},
		{"30/02/2020", false},
		{"00/05/2020", true},
		{"15/00/2021", true},
		{"32/01/2020", true},
		{"31/12/2020", false},
		{"01/01/1999", false},
	}
	for _, c := range cases {
		got := detect(d, "emitido em "+c.date+".")
		if c.flagged {
			require.Len(t, got, 1, c.date)
			assert.Equal(t, c.date, got[0].MatchedSpan)
			assert.Equal(t, analysis.SeverityHigh, got[0].Severity)
		} else {
			assert.Empty(t, got, c.date)
		}
	}
}

func TestInvalidDatesKeepsScanningAfterValidTokens(t *testing.T) {
	got := detect(invalidDates{}, "10/10/2020, 31/13/2020, 12/12/2021 e 45/01/2022")
	require.Len(t, got, 2)
	assert.Equal(t, "31/13/2020", got[0].MatchedSpan)
	assert.Equal(t, "45/01/2022", got[1].MatchedSpan)
}

func TestSuspiciousTerms(t *testing.T) {
	d := &suspiciousTerms{terms: DefaultConfig().SuspiciousTerms}

	got := detect(d, "DISPENSA DE LICITACAO. Nova dispensa de licitação. Pagamento retroativo autorizado.")
	require.Len(t, got, 2)
	assert.Equal(t, "DISPENSA DE LICITACAO", got[0].MatchedSpan)
	assert.Contains(t, got[0].Message, "dispensa de licitação")
	assert.Equal(t, "Pagamento retroativo", got[1].MatchedSpan)

	assert.Empty(t, detect(d, "Relatório mensal sem ocorrências."))
}

func TestStructure(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("identifier present", func(t *testing.T) {
		d, err := newStructure(cfg.IdentifierPattern, nil)
		require.NoError(t, err)
		for _, text := range []string{"OFÍCIO Nº 12/2024", "Processo no 3", "portaria nº 9", "Oficio nº 1"} {
			assert.Empty(t, detect(d, text), text)
		}
	})

	t.Run("identifier missing", func(t *testing.T) {
		d, err := newStructure(cfg.IdentifierPattern, nil)
		require.NoError(t, err)
		got := detect(d, "Comunicado sem numeração.")
		require.Len(t, got, 1)
		assert.Equal(t, RuleStructure, got[0].RuleID)
		assert.Empty(t, got[0].MatchedSpan)
	})

	t.Run("mandatory terms satisfy the rule", func(t *testing.T) {
		d, err := newStructure(cfg.IdentifierPattern, []string{"prefeitura", "número", "assinatura", "cnpj"})
		require.NoError(t, err)
		assert.Empty(t, detect(d, "PREFEITURA de X, NUMERO 5, CNPJ 00.000/0001, assinatura do prefeito"))

		got := detect(d, "Prefeitura de X, CNPJ 00.000/0001")
		require.Len(t, got, 1)
		assert.Contains(t, got[0].Message, "número, assinatura")
	})

	t.Run("bad pattern", func(t *testing.T) {
		_, err := newStructure("(", nil)
		assert.Error(t, err)
	})
}

func TestWaiverCeiling(t *testing.T) {
	d := &waiverCeiling{phrase: "dispensa de licitação", ceilingCents: DefaultWaiverCeilingCents}

	t.Run("amounts above the ceiling", func(t *testing.T) {
		text := "Contratação por dispensa de licitação: R$ 75.000,00, R$ 59.906,02 e R$59.906,03 e R$ 1.000.000,00."
		got := detect(d, text)
		require.Len(t, got, 3)
		assert.Equal(t, "R$ 75.000,00", got[0].MatchedSpan)
		assert.Equal(t, "R$59.906,03", got[1].MatchedSpan)
		assert.Equal(t, "R$ 1.000.000,00", got[2].MatchedSpan)
		for _, f := range got {
			assert.Equal(t, analysis.SeverityHigh, f.Severity)
			assert.Contains(t, f.Message, "59.906,02")
		}
	})

	t.Run("ceiling itself never triggers", func(t *testing.T) {
		assert.Empty(t, detect(d, "dispensa de licitação no valor de R$ 59.906,02 e R$ 100,00"))
	})

	t.Run("inactive without waiver phrase", func(t *testing.T) {
		assert.Empty(t, detect(d, "Pregão eletrônico no valor de R$ 900.000,00"))
	})

	t.Run("unaccented waiver phrase", func(t *testing.T) {
		require.Len(t, detect(d, "DISPENSA DE LICITACAO - R$ 60.000,00"), 1)
	})
}
