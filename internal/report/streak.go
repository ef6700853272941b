package report

import (
	"sort"
	"strings"
	"time"

	"github.com/avancea/ritmo/internal/models"
)

// streakAnalysis is the result of walking a habit's tasks in created
// order: run lengths, histograms and the plot string.
type streakAnalysis struct {
	CurrentStreakSize       int
	LongestStreakSize       int
	ZeroStreakSizeHistogram map[int]int
	OneStreakSizeHistogram  map[int]int
	StreakPlot              string

	// Per-task flags, aligned with the sorted task order, used by the
	// average-done computations.
	tasks     []*models.InboxTask
	done      []bool
	tolerated []bool
}

// analyzeStreaks walks the habit's tasks sorted by creation time,
// maintaining a strict run counter and a skip-one-tolerant run counter.
func analyzeStreaks(tasks []*models.InboxTask) streakAnalysis {
	sorted := make([]*models.InboxTask, len(tasks))
	copy(sorted, tasks)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedTime.Before(sorted[j].CreatedTime)
	})

	a := streakAnalysis{
		ZeroStreakSizeHistogram: make(map[int]int),
		OneStreakSizeHistogram:  make(map[int]int),
		tasks:                   sorted,
		done:                    make([]bool, len(sorted)),
		tolerated:               make([]bool, len(sorted)),
	}

	var plot strings.Builder
	zeroRun := 0
	oneRun := 0
	skipUsed := false

	endZeroRun := func() {
		if zeroRun > 0 {
			a.ZeroStreakSizeHistogram[zeroRun]++
			if zeroRun > a.LongestStreakSize {
				a.LongestStreakSize = zeroRun
			}
		}
		zeroRun = 0
	}
	endOneRun := func() {
		if oneRun > 0 {
			a.OneStreakSizeHistogram[oneRun]++
		}
		oneRun = 0
		skipUsed = false
	}

	for i, task := range sorted {
		isDone := task.Status == models.InboxTaskStatusDone
		isOpen := !task.Status.IsCompleted()
		isLast := i == len(sorted)-1

		switch {
		case isDone:
			a.done[i] = true
			zeroRun++
			oneRun++
			plot.WriteByte('X')

		case isOpen && isLast:
			// Still open; neither a miss nor a hit yet.
			plot.WriteByte('?')

		case isOpen:
			// An open task mid-sequence is tolerated: it neither breaks
			// nor extends the runs.
			a.tolerated[i] = true
			plot.WriteByte('x')

		default:
			// A real miss (NOT_DONE). The tolerant counter may absorb one
			// miss sandwiched between two done tasks.
			sandwiched := !skipUsed && i > 0 && sorted[i-1].Status == models.InboxTaskStatusDone &&
				i+1 < len(sorted) && sorted[i+1].Status == models.InboxTaskStatusDone
			if sandwiched {
				skipUsed = true
				a.tolerated[i] = true
				oneRun++
			} else {
				endOneRun()
			}
			endZeroRun()
			plot.WriteByte('.')
		}
	}

	a.CurrentStreakSize = zeroRun
	endZeroRun()
	endOneRun()
	a.StreakPlot = plot.String()
	return a
}

// avgDone returns (done+tolerated)/total over the tasks whose created
// time satisfies the window test. Returns 0 for an empty window.
func (a streakAnalysis) avgDone(inWindow func(time.Time) bool) float64 {
	total := 0
	counted := 0
	for i, task := range a.tasks {
		if !inWindow(task.CreatedTime) {
			continue
		}
		total++
		if a.done[i] || a.tolerated[i] {
			counted++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(counted) / float64(total)
}
