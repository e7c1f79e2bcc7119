package geom

import (
	"strconv"
	"strings"
)

// FormatDouble writes v the way FidoCadJ files have always stored reals:
// plain decimal with at least one fractional digit inside [1e-3, 1e7),
// scientific notation with a bare exponent ("1.0E-4") outside of it.
func FormatDouble(v float64) string {
	return formatReal(v, 64)
}

// FormatFloat32 is FormatDouble for single precision values (layer alpha)
func FormatFloat32(v float32) string {
	return formatReal(float64(v), 32)
}

func formatReal(v float64, bits int) string {
	a := v
	if a < 0 {
		a = -a
	}
	if a == 0 || (a >= 1e-3 && a < 1e7) {
		s := strconv.FormatFloat(v, 'f', -1, bits)
		if !strings.ContainsRune(s, '.') {
			s += ".0"
		}
		return s
	}

	s := strconv.FormatFloat(v, 'E', -1, bits)
	mant, exp, _ := strings.Cut(s, "E")
	if !strings.ContainsRune(mant, '.') {
		mant += ".0"
	}
	neg := strings.HasPrefix(exp, "-")
	exp = strings.TrimLeft(exp, "+-")
	exp = strings.TrimLeft(exp, "0")
	if exp == "" {
		exp = "0"
	}
	if neg {
		exp = "-" + exp
	}
	return mant + "E" + exp
}
