package csvimport

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	input := "Date,Description,Value,ExtraInfo\n" +
		"2024-03-01,Salary,2500.00,March\n" +
		"\n" +
		"2024-03-02T10:00:00Z,\"Rent, flat\",-900.5,\n" +
		"05/03/2024,Coffee,-3.20,card\n"

	rows, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Salary", rows[0].Description)
	assert.True(t, decimal.RequireFromString("2500").Equal(rows[0].Value))
	require.NotNil(t, rows[0].ExtraInfo)
	assert.Equal(t, "March", *rows[0].ExtraInfo)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), rows[0].Date)

	assert.Equal(t, "Rent, flat", rows[1].Description)
	assert.Nil(t, rows[1].ExtraInfo)
	assert.Equal(t, 4, rows[1].Line)

	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), rows[2].Date)
	assert.True(t, decimal.RequireFromString("-3.2").Equal(rows[2].Value))
}

func TestParse_WithoutExtraColumn(t *testing.T) {
	rows, err := Parse(strings.NewReader("value,date,description\n10,2024-01-01,Gift\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].ExtraInfo)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		line    int
	}{
		{"empty file", "", ErrEmpty, 0},
		{"header only", "date,description,value\n", ErrEmpty, 0},
		{"missing column", "date,description\n2024-01-01,x\n", ErrMissingColumn, 0},
		{"bad date", "date,description,value\nyesterday,x,1\n", nil, 2},
		{"bad value", "date,description,value\n2024-01-01,x,ten\n", nil, 2},
		{"empty description", "date,description,value\n2024-01-01,,1\n2024-01-02,y,2\n", nil, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Parse(strings.NewReader(tt.input))
			assert.Nil(t, rows)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.line > 0 {
				var lineErr *LineError
				require.True(t, errors.As(err, &lineErr))
				assert.Equal(t, tt.line, lineErr.Line)
			}
		})
	}
}
