package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Sales", "sales"},
		{"preço médio", "preco medio"},
		{"Ação.Total", "acao_total"},
		{"x-1", "x_1"},
		{"a@b!c#d$e%f^g&h*i(j)k", "a_b_c_d_e_f_g_h_i_j_k"},
		{"<x>?/y\\z|", "_x___y_z_"},
		{"{a}~b:[c]", "_a__b__c_"},
		{"Straße", "strasse"},
		{"Øre", "ore"},
		{"Цена", "tsena"},
		{"Продажи", "prodazhi"},
		{"Αλφα", "alpha"},
		{"北京", "bei jing "},
		{"ﬁeld", "field"},
		{"Ĳssel", "ijssel"},
		{"", ""},
		{"already_clean_01", "already_clean_01"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Canonicalize(tt.input))
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Preço-Médio (R$)",
		"ÉTÉ.2024",
		"ñandú/ÇÃO",
		"weird ́combining",
		"Æsir_Œuvre",
		"日本語-データ",
		"Продажи (шт.)",
		"Ποσότητα",
		DisallowedChars,
	}

	for _, in := range inputs {
		once := Canonicalize(in)
		assert.Equal(t, once, Canonicalize(once), "input %q", in)
	}
}

func TestCanonicalizeOutputIsASCII(t *testing.T) {
	for _, in := range []string{"Ποσότητα", "価格", "Цена-Опт", "Ωmega.π", "ﬀ Ĳ ß"} {
		out := Canonicalize(in)
		assert.NotEmpty(t, out, "input %q", in)
		for _, r := range out {
			assert.Less(t, r, rune(0x80), "input %q gave %q", in, out)
		}
		assert.Equal(t, out, strings.ToLower(out))
		assert.Equal(t, out, Canonicalize(out), "input %q", in)
	}
}

func TestCanonicalizeRemovesEveryDisallowedChar(t *testing.T) {
	out := Canonicalize(DisallowedChars)
	assert.Len(t, out, len([]rune(DisallowedChars)))
	for _, r := range out {
		assert.Equal(t, '_', r)
	}
}

func TestAll(t *testing.T) {
	assert.Equal(t, []string{"a_b", "c"}, All([]string{"A.B", "C"}))
	assert.Empty(t, All(nil))
}
