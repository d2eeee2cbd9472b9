// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/courtside/pkg/textnorm"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already_upper", "DOCENTES", "DOCENTES"},
		{"mixed_case", "Docentes", "DOCENTES"},
		{"accented", "Administratívos", "ADMINISTRATIVOS"},
		{"padded", "  estudiantes ", "ESTUDIANTES"},
		{"hyphenated", "estudiante-vinculacion", "ESTUDIANTE_VINCULACION"},
		{"spaced", "estudiante  vinculación", "ESTUDIANTE_VINCULACION"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textnorm.Key(tt.input))
		})
	}
}
