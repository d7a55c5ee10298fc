package gradebook

import (
	"math/rand"
	"time"

	"github.com/trezcool/mwalimu/core"
)

const (
	PerformanceWeeks = 6
	week             = 7 * 24 * time.Hour

	sampleBase   = 75
	sampleSpread = 10
)

type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

type WeekPerformance struct {
	Week        int     `json:"week"`
	Average     float64 `json:"average"` // 1 decimal
	Trend       Trend   `json:"trend"`
	Assignments int     `json:"assignments"`
}

// WeeklyPerformance buckets the class's assignments into the `weeks` weeks ending at now (oldest first)
// and computes the aggregated percentage of each week.
// A week without assignments carries the previous week's average over.
// ok is false when no assignment falls in the window.
func WeeklyPerformance(students []Student, now time.Time, weeks int) (perfs []WeekPerformance, ok bool) {
	if weeks <= 0 {
		return nil, false
	}
	end := truncateDay(now).Add(24 * time.Hour)
	start := end.Add(-time.Duration(weeks) * week)

	scores := make([]int, weeks)
	totals := make([]int, weeks)
	counts := make([]int, weeks)
	for _, s := range students {
		for _, a := range s.assignments {
			if a.Date.Before(start) || !a.Date.Before(end) {
				continue
			}
			idx := int(a.Date.Sub(start) / week)
			scores[idx] += a.Score
			totals[idx] += a.TotalMarks
			counts[idx]++
			ok = true
		}
	}
	if !ok {
		return nil, false
	}

	perfs = make([]WeekPerformance, 0, weeks)
	var prev float64
	for i := 0; i < weeks; i++ {
		avg := prev
		if totals[i] > 0 {
			avg = float64(core.RoundHalfUp(1000*scores[i], totals[i])) / 10
		}
		trend := TrendUp
		if i > 0 && avg < prev {
			trend = TrendDown
		}
		perfs = append(perfs, WeekPerformance{Week: i + 1, Average: avg, Trend: trend, Assignments: counts[i]})
		prev = avg
	}
	return perfs, true
}

// SamplePerformance generates an illustrative weekly series around 75% for classes without recent work.
// The output is fully determined by src.
func SamplePerformance(src rand.Source) []WeekPerformance {
	rnd := rand.New(src)
	perfs := make([]WeekPerformance, 0, PerformanceWeeks)
	for i := 1; i <= PerformanceWeeks; i++ {
		avg := sampleBase + rnd.Float64()*sampleSpread - sampleSpread/2
		trend := TrendDown
		if rnd.Float64() > 0.5 {
			trend = TrendUp
		}
		perfs = append(perfs, WeekPerformance{
			Week:    i,
			Average: float64(int(avg*10+0.5)) / 10,
			Trend:   trend,
		})
	}
	return perfs
}
