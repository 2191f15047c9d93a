package main

import "github.com/shopspring/decimal"

// manYen is the 10,000-yen unit used for budget and funding amounts
var manYen = decimal.NewFromInt(10000)

// TsuboToM2 is the area of one tsubo in square metres
const TsuboToM2 = 3.30578

// ManYenToYen converts a man-yen amount to yen without binary rounding
// drift (1.8 man-yen is exactly 18000 yen).
func ManYenToYen(amount float64) float64 {
	return decimal.NewFromFloat(amount).Mul(manYen).InexactFloat64()
}

// YenToManYen converts yen to man-yen rounded to the nearest whole unit
func YenToManYen(amount float64) float64 {
	return decimal.NewFromFloat(amount).Div(manYen).Round(0).InexactFloat64()
}

// M2ToTsubo converts square metres to tsubo
func M2ToTsubo(m2 float64) float64 {
	return m2 / TsuboToM2
}

// TsuboToSquareMetres converts tsubo to square metres
func TsuboToSquareMetres(tsubo float64) float64 {
	return tsubo * TsuboToM2
}
