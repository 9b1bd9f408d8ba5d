package market

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/fundscope/internal/models"
)

func TestFormatLocalShort(t *testing.T) {
	f := NewFormatter("IDR")

	tests := []struct {
		name  string
		input *float64
		want  string
	}{
		{"nil", nil, "Rp 0"},
		{"zero", models.Float(0), "Rp 0"},
		{"NaN", models.Float(math.NaN()), "Rp 0"},
		{"small", models.Float(950), "Rp 950"},
		{"thousands", models.Float(9_250), "Rp 9.25K"},
		{"millions", models.Float(1_500_000), "Rp 1.50M"},
		{"billions", models.Float(2_000_000_000), "Rp 2.00B"},
		{"trillions", models.Float(60_150_000_000_000), "Rp 60.15T"},
		{"negative", models.Float(-3_400_000_000), "Rp -3.40B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.FormatLocalShort(tt.input))
		})
	}
}

func TestFormatUSDShort(t *testing.T) {
	tests := []struct {
		name  string
		input *float64
		want  string
	}{
		{"nil", nil, "$0"},
		{"price", models.Float(150), "$150.00"},
		{"grouped", models.Float(-999.5), "-$999.50"},
		{"thousands", models.Float(1_250), "$1.25K"},
		{"negative billions", models.Float(-2_500_000_000), "-$2.50B"},
		{"trillions", models.Float(3_090_000_000_000), "$3.09T"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUSDShort(tt.input))
		})
	}
}

func TestFormatWithUSDSideConversion(t *testing.T) {
	f := NewFormatter("IDR")

	got := f.FormatWithUSDSideConversion(models.Float(60_150_000_000_000), models.Float(15820))
	assert.True(t, strings.HasPrefix(got, "Rp 60.15T"), got)
	assert.Contains(t, got, "($3.80B)")
	assert.Equal(t, "Rp 60.15T ($3.80B)", got)

	assert.Equal(t, "Rp 60.15T", f.FormatWithUSDSideConversion(models.Float(60_150_000_000_000), nil))
	assert.Equal(t, "Rp 0", f.FormatWithUSDSideConversion(nil, models.Float(15820)))
}

func TestFormatAmount_Branches(t *testing.T) {
	f := NewFormatter("IDR")
	rate := models.Float(16000)

	assert.Equal(t, "Rp 9.60K ($0.60)", f.FormatAmount(models.Float(9600), "IDR", rate))
	assert.Equal(t, "$98.73B", f.FormatAmount(models.Float(98_730_000_000), "USD", rate))
	assert.Equal(t, "150 EUR", f.FormatAmount(models.Float(150), "EUR", nil))
	assert.Equal(t, "1234567.5 JPY", f.FormatAmount(models.Float(1_234_567.5), "JPY", nil))
	assert.Equal(t, "N/A GBP", f.FormatAmount(nil, "GBP", nil))
}

func TestNewFormatter_UnknownCurrencyUsesCode(t *testing.T) {
	f := NewFormatter("xyz")
	assert.Equal(t, "XYZ", f.LocalCurrency())
	assert.Equal(t, "XYZ 1.00K", f.FormatLocalShort(models.Float(1000)))
}

func TestFormat_GroupsBelowThousand(t *testing.T) {
	f := NewFormatter("IDR")

	assert.Equal(t, "Rp 999", f.FormatLocalShort(models.Float(999)))
	assert.Equal(t, "Rp 1,000", f.FormatLocalShort(models.Float(999.5)))
	assert.Equal(t, "Rp -12", f.FormatLocalShort(models.Float(-12.3)))
	assert.Equal(t, "-$12.35", FormatUSDShort(models.Float(-12.345)))
	assert.Equal(t, "$0.60", FormatUSDShort(models.Float(0.6)))
	assert.Equal(t, "$1,000.00", FormatUSDShort(models.Float(999.999)))
}
