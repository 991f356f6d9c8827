package models

import "github.com/shopspring/decimal"

// RoundTo rounds half away from zero to the given number of decimal places
func RoundTo(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
