package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		symbol string
		number string
		want   string
	}{
		{"$", "1,200.00", "$1,200.00"},
		{"$", "1200", "$1,200"},
		{"", "1,200.50", "$1,200.50"},
		{"$", "500", "$500"},
		{"€", "1000000", "€1,000,000"},
		{"£", "0.99", "£0.99"},
		{"$", "007", "$7"},
		{"₹", "25,00,000", "₹2,500,000"},
	}

	for _, tt := range tests {
		t.Run(tt.symbol+tt.number, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.symbol, tt.number))
		})
	}
}
