package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCedula(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain digits", "00113918205", true},
		{"dashed", "001-1391820-5", true},
		{"another valid", "40200123459", true},
		{"bad check digit", "00113918204", false},
		{"too short", "0011391820", false},
		{"too long", "001139182055", false},
		{"letters only", "ABCDEFGHIJK", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ValidateCedula(tc.input))
		})
	}
}

func TestFormatAndMaskCedula(t *testing.T) {
	assert.Equal(t, "001-1391820-5", FormatCedula("00113918205"))
	assert.Equal(t, "001-*****20-5", MaskCedula("001-1391820-5"))
	assert.Equal(t, "***", MaskCedula("123"))
}

func TestExtractCedulaCandidates(t *testing.T) {
	t.Run("finds dashed number among card text", func(t *testing.T) {
		text := "REPUBLICA DOMINICANA\nCEDULA DE IDENTIDAD Y ELECTORAL\n001-1391820-5\nJUAN PEREZ"
		assert.Equal(t, []string{"00113918205"}, ExtractCedulaCandidates(text))
	})

	t.Run("folds look-alike letters inside numeric tokens", func(t *testing.T) {
		text := "No. OO1-139I82O-5"
		assert.Contains(t, ExtractCedulaCandidates(text), "00113918205")
	})

	t.Run("slides over long digit runs", func(t *testing.T) {
		got := ExtractCedulaCandidates("900113918205")
		assert.Contains(t, got, "90011391820")
		assert.Contains(t, got, "00113918205")
	})

	t.Run("no candidates in plain words", func(t *testing.T) {
		assert.Empty(t, ExtractCedulaCandidates("SOLO PALABRAS AQUI"))
	})
}

func TestMatchCedula(t *testing.T) {
	t.Run("exact", func(t *testing.T) {
		m := MatchCedula("001-1391820-5", "001 1391820 5", 2)
		assert.Equal(t, MatchExact, m.Verdict)
		assert.Equal(t, 0, m.Distance)
		assert.True(t, m.Accepted())
	})

	t.Run("within tolerance", func(t *testing.T) {
		m := MatchCedula("00113918205", "001-1891820-6", 2)
		assert.Equal(t, MatchFuzzy, m.Verdict)
		assert.Equal(t, 2, m.Distance)
		assert.True(t, m.Accepted())
	})

	t.Run("over tolerance", func(t *testing.T) {
		m := MatchCedula("00113918205", "402-0012345-9", 2)
		assert.Equal(t, MatchMismatch, m.Verdict)
		assert.False(t, m.Accepted())
	})

	t.Run("unreadable", func(t *testing.T) {
		m := MatchCedula("00113918205", "blurry", 2)
		assert.Equal(t, MatchUnreadable, m.Verdict)
		assert.False(t, m.Accepted())
	})

	t.Run("picks the closest candidate", func(t *testing.T) {
		m := MatchCedula("00113918205", "402-0012345-9 001-1391820-4", 2)
		assert.Equal(t, "00113918204", m.Candidate)
		assert.Equal(t, 1, m.Distance)
	})
}

func TestDigitDistance(t *testing.T) {
	assert.Equal(t, 0, DigitDistance("123", "123"))
	assert.Equal(t, 3, DigitDistance("123", "456"))
	assert.Equal(t, 4, DigitDistance("123", "1234"))
}
