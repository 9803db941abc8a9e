// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/verbum/pkg/uuid"
)

func TestNew(t *testing.T) {
	first, second := uuid.New(), uuid.New()

	assert.True(t, uuid.Valid(first))
	assert.NotEqual(t, first, second)
	assert.Equal(t, byte('7'), first[14], "version nibble")
}

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0190f5c4-6b1e-7a3c-9d2e-4f5a6b7c8d9e", true},
		{"0190F5C4-6B1E-7A3C-9D2E-4F5A6B7C8D9E", false},
		{"{0190f5c4-6b1e-7a3c-9d2e-4f5a6b7c8d9e}", false},
		{"not-a-uuid", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, uuid.Valid(tt.in))
		})
	}
}
