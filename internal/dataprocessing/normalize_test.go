package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeQuantity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		rule    QuantityRule
		want    int
		wantErr bool
	}{
		{"truncate fraction", "120.9", QuantityTruncate, 120, false},
		{"truncate integer", "100", QuantityTruncate, 100, false},
		{"truncate small", "0.99", QuantityTruncate, 0, false},
		{"half even down", "12.5", QuantityRoundHalfEven, 12, false},
		{"half even up", "13.5", QuantityRoundHalfEven, 14, false},
		{"round below half", "40.49", QuantityRoundHalfEven, 40, false},
		{"round above half", "40.51", QuantityRoundHalfEven, 41, false},
		{"zero", "0", QuantityRoundHalfEven, 0, false},
		{"scientific", "1.5e2", QuantityTruncate, 150, false},
		{"negative", "-1", QuantityTruncate, 0, true},
		{"negative fraction", "-0.4", QuantityRoundHalfEven, 0, true},
		{"non numeric", "abc", QuantityTruncate, 0, true},
		{"blank", "", QuantityTruncate, 0, true},
		{"beyond int64", "9223372036854775808", QuantityTruncate, 0, true},
		{"beyond uint64", "18446744073709551617", QuantityRoundHalfEven, 0, true},
		{"huge scientific", "1e30", QuantityTruncate, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeQuantity(tt.input, tt.rule)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeMonth(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"12", 12, false},
		{"3.0", 3, false},
		{"3.7", 3, false},
		{"0", 0, true},
		{"13", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"18446744073709551619", 0, true},
		{"-18446744073709551617", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := normalizeMonth(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeYear(t *testing.T) {
	y, err := normalizeYear("2020.0")
	require.NoError(t, err)
	assert.Equal(t, 2020, y)

	_, err = normalizeYear("twenty")
	assert.Error(t, err)

	_, err = normalizeYear("0")
	assert.Error(t, err)

	_, err = normalizeYear("18446744073709553945")
	assert.ErrorContains(t, err, "out of integer range")
}

func TestNormalizeFruit(t *testing.T) {
	f, err := normalizeFruit("사과")
	require.NoError(t, err)
	assert.Equal(t, "사과", f)

	_, err = normalizeFruit("")
	assert.Error(t, err)
}
