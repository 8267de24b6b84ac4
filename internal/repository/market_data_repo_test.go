package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-insight/internal/dto"
	"stock-insight/pkg/utils"
)

func fptr(v float64) *float64 { return &v }

func TestParseChartResultSkipsUnusableRows(t *testing.T) {
	day := func(d int) int64 {
		return time.Date(2024, 1, 1+d, 0, 0, 0, 0, time.UTC).Unix()
	}
	result := dto.YahooChartResult{
		Timestamp: []int64{day(0), day(1), day(2), day(3)},
		Indicators: dto.YahooIndicators{
			Quote: []dto.YahooQuote{{
				Open:   []*float64{fptr(10), nil, fptr(12), fptr(13)},
				Close:  []*float64{fptr(10.5), nil, fptr(0), fptr(13.5)},
				High:   []*float64{fptr(11), nil, fptr(12.5), fptr(14)},
				Low:    []*float64{fptr(9.5), nil, fptr(11.5), fptr(12.5)},
				Volume: []*float64{fptr(1000), nil, fptr(1200), fptr(1300)},
			}},
		},
	}

	points := parseChartResult([]dto.YahooChartResult{result})

	// null close and zero close rows are dropped
	require.Len(t, points, 2)
	assert.Equal(t, "2024-01-01", utils.FormatDate(points[0].Date))
	assert.Equal(t, 10.5, points[0].Close)
	assert.Equal(t, 1000.0, points[0].Volume)
	assert.Equal(t, "2024-01-04", utils.FormatDate(points[1].Date))
	assert.Equal(t, 13.5, points[1].Close)
}

func TestParseChartResultEmpty(t *testing.T) {
	assert.Nil(t, parseChartResult(nil))
	assert.Nil(t, parseChartResult([]dto.YahooChartResult{{}}))
}
