package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySimple(t *testing.T) {
	tests := []struct {
		name   string
		low    *float64
		spread *float64
		want   RiskLevel
	}{
		{"humid low cloud", Float(55), Float(1.5), RiskHigh},
		{"moderate low cloud", Float(35), Float(5), RiskWatch},
		{"clear", Float(10), Float(5), RiskNormal},
		{"missing low cloud", nil, Float(5), RiskWatch},
		{"heavy low cloud dry air", Float(60), Float(4), RiskWatch},
		{"heavy low cloud missing spread", Float(60), nil, RiskWatch},
		{"boundary 50 and 1.99", Float(50), Float(1.99), RiskHigh},
		{"boundary spread 2", Float(50), Float(2), RiskWatch},
		{"boundary 30", Float(30), nil, RiskWatch},
		{"just under 30", Float(29.9), Float(0.5), RiskNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySimple(tt.low, tt.spread, Float(3)))
		})
	}
}

func TestRiskLevelText(t *testing.T) {
	b, err := json.Marshal(map[string]RiskLevel{"r": RiskHigh})
	require.NoError(t, err)
	assert.JSONEq(t, `{"r":"high"}`, string(b))

	var got RiskLevel
	require.NoError(t, got.UnmarshalText([]byte("watch")))
	assert.Equal(t, RiskWatch, got)
	assert.Error(t, got.UnmarshalText([]byte("severe")))

	_, err = RiskLevel(7).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "RiskLevel(7)", RiskLevel(7).String())
	assert.Equal(t, "normal (model 12h)", SimpleText(RiskNormal))
}
