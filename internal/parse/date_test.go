package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"03/15/2024", "2024-03-15"},
		{"March 15, 2024", "2024-03-15"},
		{"2024-03-15", "2024-03-15"},
		{"2024-03-15T10:30:00Z", "2024-03-15"},
		{"2024-03-15 10:30:00", "2024-03-15"},
		{"2024/3/5", "2024-03-05"},
		{"15/03/2024", "2024-03-15"},
		{"3-5-2024", "2024-03-05"},
		{"03.15.2024", "2024-03-15"},
		{"Mar. 5, 2024", "2024-03-05"},
		{"Sept 30 2024", "2024-09-30"},
		{"15 March 2024", "2024-03-15"},
		{"5th June 2024", "2024-06-05"},
		{"15-Mar-2024", "2024-03-15"},
		{"  29 feb 2024 ", "2024-02-29"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDate_Rejects(t *testing.T) {
	for _, in := range []string{
		"15th of March",
		"",
		"2024-02-30",
		"29 Feb 2023",
		"13/13/2024",
		"Smarch 3, 2024",
		"next Tuesday",
		"03/15/24",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := NormalizeDate(in)
			assert.Error(t, err)
		})
	}
}
