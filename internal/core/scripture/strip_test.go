// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scripture_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/verbum/internal/core/scripture"
)

func TestStripVerseNumbers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"assembled_passage", "12 Keď Ježiš počul, že Jána zatkli, odobral sa do Galiley. 13 Opustil Nazaret.", "Keď Ježiš počul, že Jána zatkli, odobral sa do Galiley. Opustil Nazaret."},
		{"three_digit_number", "175 Nech žije moja duša 176 Blúdim", "Nech žije moja duša Blúdim"},
		{"four_digits_kept", "Bolo ich asi 5000 mužov.", "Bolo ich asi 5000 mužov."},
		{"digit_glued_to_word_kept", "Ž23 je žalm", "Ž23 je žalm"},
		{"digit_before_punctuation_kept", "v kapitole 12.", "v kapitole 12."},
		{"trailing_number_kept", "rok 33", "rok 33"},
		{"space_before_punctuation_removed", "Amen 3 , amen", "Amen, amen"},
		{"after_quote", "„1 Blahoslavení", "„Blahoslavení"},
		{"prose_number_removed_too", "mali 5 chlebov", "mali chlebov"},
		{"consecutive_numbers", "1 2 3 slovo", "slovo"},
		{"tabs_collapse", "1\tslovo\t\t2 druhé", "slovo druhé"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scripture.StripVerseNumbers(tt.in))
		})
	}
}

/*
TestStripVerseNumbers_Idempotent applies the transform twice to a range of inputs.
*/
func TestStripVerseNumbers_Idempotent(t *testing.T) {
	inputs := []string{
		"12 Keď Ježiš počul 13 Opustil Nazaret.",
		"a1 2 b",
		"(12)3 x",
		"12 .5 x",
		"a 1234 5 b",
		"1\n2 a",
		"Bolo ich asi 5000 mužov 44 a 5 žien.",
	}

	for _, in := range inputs {
		once := scripture.StripVerseNumbers(in)
		assert.Equal(t, once, scripture.StripVerseNumbers(once), "input %q", in)
	}
}

/*
TestStripVerseNumbers_RoundTrip strips text assembled with numbers and compares
it with the text assembled without them.
*/
func TestStripVerseNumbers_RoundTrip(t *testing.T) {
	verses := []scripture.Verse{
		{Number: 1, Text: "Na počiatku bolo Slovo,"},
		{Number: 2, Text: "ono bolo na počiatku u Boha."},
		{Number: 3, Text: "Všetko povstalo skrze neho."},
	}

	numbered := scripture.AssembleText(verses, scripture.FormatOptions{VerseNumbers: true})
	plain := scripture.AssembleText(verses, scripture.FormatOptions{})

	assert.Equal(t, plain, scripture.StripVerseNumbers(numbered))
}
