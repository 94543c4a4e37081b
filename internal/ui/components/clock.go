package components

import (
	"fmt"
	"time"
)

// FormatClock formats d as m:ss, with a leading minus when negative.
func FormatClock(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	secs := int(d.Seconds())
	return fmt.Sprintf("%s%d:%02d", sign, secs/60, secs%60)
}
