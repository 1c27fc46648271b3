package query

import "fmt"

// On-ledger amounts are integer base units with nine decimal places.
// Conversion to display units happens at export/response time only;
// storage and projection never leave integer space.
const baseUnitsPerDisplay = 1_000_000_000

// DisplayUnits renders an integer base-unit amount as a decimal string
// without going through floating point.
func DisplayUnits(base int64) string {
	sign := ""
	u := uint64(base)
	if base < 0 {
		sign = "-"
		u = uint64(-(base + 1)) + 1
	}
	return fmt.Sprintf("%s%d.%09d", sign, u/baseUnitsPerDisplay, u%baseUnitsPerDisplay)
}
