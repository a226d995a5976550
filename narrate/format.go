package narrate

import (
	"math"
	"strconv"

	"golang.org/x/text/message"
)

// number formats v with the locale's grouping and a fixed number of decimals
func number(p *message.Printer, v float64, decimals int) string {
	if v == 0 || math.IsNaN(v) {
		v = 0
	}
	return p.Sprintf("%."+strconv.Itoa(decimals)+"f", v)
}

// signed always prefixes the sign so increases read as +x
func signed(p *message.Printer, v float64, decimals int) string {
	sign := "+"
	if v < 0 {
		sign = "-"
	}
	return sign + number(p, math.Abs(v), decimals)
}

func count(p *message.Printer, n int) string {
	return p.Sprintf("%d", n)
}

// orZero treats missing optional figures as 0 in prose
func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// optional prints a missing figure as "-"
func optional(p *message.Printer, v *float64, decimals int) string {
	if v == nil {
		return "-"
	}
	return number(p, *v, decimals)
}

func label(p *message.Printer, l string) string {
	return p.Sprintf("label." + l)
}
