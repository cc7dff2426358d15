package ponumber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name   string
		number Number
		want   string
	}{
		{"pads work order", Number{"01", "CP", 12, 1}, "01CP0012-1"},
		{"three char division", Number{"A7", "RFX", 345, 22}, "A7RFX0345-22"},
		{"max work order", Number{"99", "SV", 9999, 101}, "99SV9999-101"},
		{"zero work order", Number{"01", "CP", 0, 3}, "01CP0000-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.number)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		number Number
	}{
		{"short leader", Number{"1", "CP", 12, 1}},
		{"long leader", Number{"012", "CP", 12, 1}},
		{"short division", Number{"01", "C", 12, 1}},
		{"long division", Number{"01", "CPXX", 12, 1}},
		{"punctuation in division", Number{"01", "C-", 12, 1}},
		{"work order too large", Number{"01", "CP", 10000, 1}},
		{"negative work order", Number{"01", "CP", -1, 1}},
		{"zero sequence", Number{"01", "CP", 12, 0}},
		{"sequence too large", Number{"01", "CP", 12, MaxPurchaseSequence + 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.number)
			assert.Error(t, err)
		})
	}
}

func TestEncodeLegacy(t *testing.T) {
	got, err := EncodeLegacy(Number{"01", "CP", 2345, 1}, "bn23")
	require.NoError(t, err)
	assert.Equal(t, "01CP2345-1bn23", got)

	_, err = EncodeLegacy(Number{"01", "CP", 2345, 1}, "BN23")
	assert.Error(t, err, "confirmation must be lowercase")

	_, err = EncodeLegacy(Number{"01", "CP", 2345, 1}, "bn2")
	assert.Error(t, err)

	_, err = EncodeLegacy(Number{"01", "CP", 12, 1}, "1234")
	assert.Error(t, err, "all-digit confirmation reads back as a sequence")
}

func TestIsConfirmationCode(t *testing.T) {
	assert.True(t, IsConfirmationCode("bn23"))
	assert.True(t, IsConfirmationCode("123a"))
	assert.True(t, IsConfirmationCode("abcd"))
	assert.False(t, IsConfirmationCode("1234"))
	assert.False(t, IsConfirmationCode("0000"))
	assert.False(t, IsConfirmationCode("BN23"))
	assert.False(t, IsConfirmationCode(""))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Number
	}{
		{"current format", "01CP0012-1", Number{"01", "CP", 12, 1}},
		{"legacy suffix ignored", "01CP2345-1bn23", Number{"01", "CP", 2345, 1}},
		{"three char division", "A7RFX0345-22", Number{"A7", "RFX", 345, 22}},
		{"legacy with three char division", "A7RFX0345-22zz9a", Number{"A7", "RFX", 345, 22}},
		{"long sequence", "01CP0012-123", Number{"01", "CP", 12, 123}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decode(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	inputs := []string{
		"invalid",
		"",
		"01CP234-1",
		"0CP0012-1",
		"01CPXY0012-1",
		"01CP0012_1",
		"01CP0012-",
		"01CP0012-1BN23",
		"01CP0012-1bn2",
		"01CP0012-1bn234",
		"01C!0012-1",
		"01CP0012-99999999999",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got, ok := Decode(input)
			assert.False(t, ok)
			assert.Equal(t, Number{}, got)
		})
	}
}

func TestInspect_ReportsVersion(t *testing.T) {
	d, ok := Inspect("01CP2345-1bn23")
	require.True(t, ok)
	assert.Equal(t, VersionLegacy, d.Version)
	assert.Equal(t, "bn23", d.Suffix)

	d, ok = Inspect("01CP2345-1")
	require.True(t, ok)
	assert.Equal(t, VersionCurrent, d.Version)
	assert.Empty(t, d.Suffix)
}

func TestInspect_NumericSuffixReadsAsCurrent(t *testing.T) {
	d, ok := Inspect("01CP2345-12345")
	require.True(t, ok)
	assert.Equal(t, VersionCurrent, d.Version)
	assert.Equal(t, 12345, d.PurchaseSequence)
}

func TestRoundTrip(t *testing.T) {
	leaders := []string{"01", "Z9", "ab"}
	divisions := []string{"CP", "RF", "SVC", "x1"}
	workOrders := []int{0, 7, 42, 999, 1000, 9999}
	sequences := []int{1, 2, 10, 999, 123456, MaxPurchaseSequence}

	for _, l := range leaders {
		for _, d := range divisions {
			for _, wo := range workOrders {
				for _, seq := range sequences {
					n := Number{LeaderID: l, DivisionCode: d, WorkOrderNumber: wo, PurchaseSequence: seq}

					encoded, err := Encode(n)
					require.NoError(t, err)
					decoded, ok := Decode(encoded)
					require.True(t, ok, encoded)
					assert.Equal(t, n, decoded, encoded)

					for _, code := range []string{"q7x2", "7qx2", "123a"} {
						legacy, err := EncodeLegacy(n, code)
						require.NoError(t, err)
						decoded, ok = Decode(legacy)
						require.True(t, ok, legacy)
						assert.Equal(t, n, decoded, legacy)
					}
				}
			}
		}
	}
}
