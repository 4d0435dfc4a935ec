package emissions

import (
	"time"

	"co2-chart/internal/types"
)

// Nearest returns the record whose date is closest to t.
// The scan only replaces its candidate on strict improvement, so the earliest
// of several equidistant records wins. ok is false for empty input.
func Nearest(records []types.DailyRecord, t time.Time) (types.DailyRecord, bool) {
	if len(records) == 0 {
		return types.DailyRecord{}, false
	}

	best := records[0]
	bestGap := between(best.Date, t)
	for _, r := range records[1:] {
		if g := between(r.Date, t); g.less(bestGap) {
			best, bestGap = r, g
		}
	}
	return best, true
}

// gap is an absolute time distance. time.Time.Sub saturates at about 292
// years, which would make every far-away record look equally distant.
type gap struct {
	sec  int64
	nsec int64
}

func between(a, b time.Time) gap {
	sec := a.Unix() - b.Unix()
	nsec := int64(a.Nanosecond() - b.Nanosecond())
	if sec < 0 || (sec == 0 && nsec < 0) {
		sec, nsec = -sec, -nsec
	}
	if nsec < 0 {
		sec--
		nsec += int64(time.Second)
	}
	return gap{sec: sec, nsec: nsec}
}

func (g gap) less(o gap) bool {
	return g.sec < o.sec || (g.sec == o.sec && g.nsec < o.nsec)
}
