package builder

// Progress bands of a run, in percent.
const (
	progressValidate = 0
	progressResolve  = 5
	progressMetadata = 15
	progressStage    = 20
	progressCompress = 70
	progressLog      = 85
	progressDone     = 100

	stageSpan = progressCompress - progressStage
)

// tracker forwards progress to a Reporter, clamped to [0, 100] and never
// moving backwards.
type tracker struct {
	rep  Reporter
	last int
}

func (t *tracker) report(percent int, status string) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if percent < t.last {
		percent = t.last
	}
	t.last = percent
	t.rep.Progress(percent, status)
}

// cancelled resets the bar. It is the only report allowed to go backwards.
func (t *tracker) cancelled() {
	t.last = 0
	t.rep.Progress(0, "Cancelled")
}

// stagePercent maps having staged done of total paths into the staging band.
func stagePercent(done, total int) int {
	if total <= 0 {
		return progressCompress
	}
	return progressStage + stageSpan*done/total
}
