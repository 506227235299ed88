package domain

import (
	"strconv"

	"github.com/dustin/go-humanize"
)

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatBytes renders a size with 1024-based units and at most two decimals,
// trailing zeros dropped: 5242880 -> "5 MB", 1536 -> "1.5 KB", 0 -> "0 Bytes".
func FormatBytes(n int64) string {
	if n <= 0 {
		if n == 0 {
			return "0 Bytes"
		}
		return "-" + FormatBytes(-n)
	}

	i := 0
	value := float64(n)
	for value >= 1024 && i < len(byteUnits)-1 {
		value /= 1024
		i++
	}

	rounded, err := strconv.ParseFloat(strconv.FormatFloat(value, 'f', 2, 64), 64)
	if err != nil {
		rounded = value
	}
	return humanize.FtoaWithDigits(rounded, 2) + " " + byteUnits[i]
}

// FormatLimit is FormatBytes with "Unlimited" for unbounded limits.
func FormatLimit(n int64) string {
	if IsUnlimited(n) {
		return "Unlimited"
	}
	return FormatBytes(n)
}
