package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/masmgr/gitarchive-go/internal/builder"
)

const barWidth = 50

// ProgressView displays an archive run: a bar, a status line and the log.
type ProgressView struct {
	root        *tview.Flex
	progressBar *tview.TextView
	statusText  *tview.TextView
	hintText    *tview.TextView
	logView     *tview.TextView
}

// NewProgressView creates a new progress view
func NewProgressView(title string) *ProgressView {
	p := &ProgressView{}
	p.setup(title)
	return p
}

func (p *ProgressView) setup(title string) {
	header := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[::b]" + tview.Escape(title) + "[-:-:-]")
	header.SetBackgroundColor(tcell.ColorDarkBlue)

	p.progressBar = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	p.statusText = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	p.hintText = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[gray]Esc/q: cancel[-]")

	p.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	p.logView.SetBorder(true).SetTitle(" Log ")

	progressContainer := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 1, 0, false).
		AddItem(p.statusText, 1, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(p.progressBar, 2, 0, false).
		AddItem(p.hintText, 1, 0, false)

	centered := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(progressContainer, barWidth+10, 0, false).
		AddItem(nil, 0, 1, false)

	p.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(centered, 6, 0, false).
		AddItem(p.logView, 0, 1, true)

	p.SetProgress(0, "Starting")
}

// SetProgress updates the bar and the status line.
func (p *ProgressView) SetProgress(percent int, status string) {
	p.progressBar.SetText(fmt.Sprintf("[green]%s[-]\n%d%%", renderBar(percent, barWidth), clampPercent(percent)))
	p.statusText.SetText("[white]" + tview.Escape(status) + "[-]")
}

// AppendLog adds a log line, colored by level.
func (p *ProgressView) AppendLog(e builder.Entry) {
	fmt.Fprintf(p.logView, "[%s]%s[-]\n", levelColor(e.Level), tview.Escape(e.Message))
	p.logView.ScrollToEnd()
}

// SetHint replaces the key hint under the bar.
func (p *ProgressView) SetHint(hint string) {
	p.hintText.SetText("[gray]" + tview.Escape(hint) + "[-]")
}

// Root returns the root primitive
func (p *ProgressView) Root() tview.Primitive {
	return p.root
}

func clampPercent(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

func renderBar(percent, width int) string {
	filled := clampPercent(percent) * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func levelColor(level builder.Level) string {
	switch level {
	case builder.LevelWarn:
		return "yellow"
	case builder.LevelError:
		return "red"
	case builder.LevelCancel:
		return "aqua"
	case builder.LevelSuccess:
		return "green"
	default:
		return "white"
	}
}
