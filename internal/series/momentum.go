package series

import (
	"time"

	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
)

// RSI computes the relative strength index over the trailing period using
// techan. The result is no-data until period+1 points exist.
func RSI(s *Series, period int) Value {
	if s == nil || period < 1 || s.Len() < period+1 {
		return NoData()
	}

	ts := techan.NewTimeSeries()
	for i := 0; i < s.Len(); i++ {
		p := s.At(i)
		candle := techan.NewCandle(techan.NewTimePeriod(p.Timestamp, 24*time.Hour))
		price := big.NewDecimal(p.Price)
		candle.OpenPrice = price
		candle.MaxPrice = price
		candle.MinPrice = price
		candle.ClosePrice = price
		ts.AddCandle(candle)
	}

	rsi := techan.NewRelativeStrengthIndexIndicator(techan.NewClosePriceIndicator(ts), period)
	value := rsi.Calculate(ts.LastIndex()).Float()
	if value != value { // NaN guard
		return NoData()
	}
	return Of(value)
}
