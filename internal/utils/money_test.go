package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 100600.0, Round2(100600.004))
	assert.Equal(t, 92.63, Round2(92.625))
	assert.Equal(t, -1.23, Round2(-1.2349))
	assert.Equal(t, 0.0, Round2(0))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "ETB 100,600.00", FormatPrice(100600, "ETB"))
	assert.Equal(t, "USD 1,234.57", FormatPrice(1234.567, "usd"))
	assert.Equal(t, "ETB 950.00", FormatPrice(950, "ETB"))
	assert.Equal(t, "ETB -1,000.50", FormatPrice(-1000.5, "ETB"))
}
