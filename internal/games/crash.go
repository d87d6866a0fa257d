package games

import (
	"math"
	"time"

	"github.com/cashx/engine/internal/rng"
)

// CrashMaxMultiplier caps the drawn crash point.
const CrashMaxMultiplier = 1000.0

// crashGrowthRate drives the displayed multiplier curve m(t) = e^(rate·t).
const crashGrowthRate = 0.15

// CrashPoint draws a crash multiplier >= 1.0 from the house-edge
// calibrated inverse-CDF distribution: draws below the house edge crash
// instantly at exactly 1.0, otherwise the point is max(1, RTP/r). The
// instant-crash branch realizes the edge and also absorbs r→0, which
// would otherwise make the quotient unbounded.
func CrashPoint(src rng.Source) float64 {
	r := src.Float()
	if r < CrashStats.HouseEdge {
		return 1.0
	}
	point := math.Max(1.0, CrashStats.RTP/r)
	return math.Min(point, CrashMaxMultiplier)
}

// CrashMultiplierAt returns the displayed multiplier after the given
// elapsed time, rounded to two decimals the way the wheel renders it.
// Purely a function of time; never the source of truth for resolution
// on its own.
func CrashMultiplierAt(elapsed time.Duration) float64 {
	m := math.Exp(elapsed.Seconds() * crashGrowthRate)
	return math.Floor(m*100) / 100
}

// CrashTimeToReach returns the elapsed time at which the displayed
// multiplier reaches mult. Inverse of CrashMultiplierAt, used by
// simulation callers to resolve rounds at an exact target.
func CrashTimeToReach(mult float64) time.Duration {
	if mult <= 1.0 {
		return 0
	}
	return time.Duration(math.Log(mult) / crashGrowthRate * float64(time.Second))
}

// ResolveCashOut settles a cash-out request against the round's drawn
// crash point using only the elapsed time at which the request was made.
// Client-reported multipliers are never trusted. Returns the multiplier
// the player locked in, or busted=true if the implied multiplier had
// already reached the crash point.
func ResolveCashOut(crashPoint float64, elapsed time.Duration) (multiplier float64, busted bool) {
	m := CrashMultiplierAt(elapsed)
	if m >= crashPoint {
		return crashPoint, true
	}
	return m, false
}
