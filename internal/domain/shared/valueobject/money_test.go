package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45")
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("123.45")))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number")
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyFromInt(100)
	b, err := NewMoneyFromString("0.10")
	require.NoError(t, err)

	assert.Equal(t, "100.1", a.Add(b).String())
	assert.Equal(t, "99.9", a.Sub(b).String())
	assert.True(t, b.Sub(a).IsNegative())
	assert.Equal(t, "-100", a.Neg().String())
}

func TestMoney_FitsScale(t *testing.T) {
	tests := []struct {
		amount string
		fits   bool
	}{
		{"100", true},
		{"0.0001", true},
		{"12.34560", true},
		{"10.00005", false},
		{"0.00001", false},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			m, err := NewMoneyFromString(tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.fits, m.FitsScale())
			assert.Equal(t, tt.fits, FitsScale(m.Amount()))
		})
	}
}

func TestMoney_RepeatedSplitsStayExact(t *testing.T) {
	// ten allocations of 0.1 must sum to exactly 1
	total := Zero()
	tenth, _ := NewMoneyFromString("0.1")
	for i := 0; i < 10; i++ {
		total = total.Add(tenth)
	}
	assert.True(t, total.Equals(NewMoneyFromInt(1)))
}

func TestMoney_Comparison(t *testing.T) {
	small := NewMoneyFromInt(3000)
	large := NewMoneyFromInt(7000)

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"greater", large.GreaterThan(small), true},
		{"less", small.LessThan(large), true},
		{"equals self", small.Equals(NewMoneyFromInt(3000)), true},
		{"zero", Zero().IsZero(), true},
		{"positive", small.IsPositive(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}

	assert.Equal(t, -1, small.Compare(large))
	assert.True(t, MinMoney(small, large).Equals(small))
	assert.True(t, MinMoney(large, small).Equals(small))
}

func TestMoney_JSON(t *testing.T) {
	m, _ := NewMoneyFromString("2500.75")
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `"2500.75"`, string(data))

	var fromString Money
	require.NoError(t, json.Unmarshal([]byte(`"10.5"`), &fromString))
	assert.Equal(t, "10.5", fromString.String())

	var fromNumber Money
	require.NoError(t, json.Unmarshal([]byte(`42`), &fromNumber))
	assert.Equal(t, "42", fromNumber.String())

	var bad Money
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &bad))
}

func TestMoney_ScanValue(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("99.95"))
	assert.Equal(t, "99.95", m.String())

	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "99.95", v)
}
