package downloader

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"ytgrab/internal/model"
	"ytgrab/internal/selector"
)

// Printer writes the human facing console lines. Progress is redrawn in place.
type Printer struct {
	out   io.Writer
	width int
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) Header(index, total int, url string) {
	fmt.Fprintf(p.out, "\n\n===== (%d/%d) %s =====\n", index, total, url)
}

func (p *Printer) Picked(plan selector.Plan, maxHeight int) {
	switch plan.Kind {
	case selector.PlanPair:
		fmt.Fprintf(p.out, "[PICK] video=%s + audio=%s (<= %dp)\n", plan.Selection.VideoID, plan.Selection.AudioID, maxHeight)
	case selector.PlanProgressive:
		fmt.Fprintf(p.out, "[PICK] progressive mp4=%s (<= %dp)\n", plan.Selection.ProgressiveID, maxHeight)
	default:
		fmt.Fprintln(p.out, "[WARN] no listed format fits, downloading through the fallback selector")
	}
}

func (p *Printer) Progress(progress model.Progress) {
	if progress.Finished() {
		p.width = 0
		fmt.Fprintln(p.out, "\n[OK] Downloaded. Merging/processing...")
		return
	}

	line := "[DOWN] " + progressLine(progress)
	pad := ""
	if p.width > len(line) {
		pad = strings.Repeat(" ", p.width-len(line))
	}
	p.width = len(line)

	fmt.Fprint(p.out, "\r"+line+pad)
}

func progressLine(progress model.Progress) string {
	done := humanize.Bytes(uint64(progress.Downloaded))
	if percent := progress.Percent(); percent >= 0 {
		done = fmt.Sprintf("%5.1f%% of %s", percent, humanize.Bytes(uint64(progress.Total)))
	}

	speed := "--"
	if progress.Speed > 0 {
		speed = humanize.Bytes(uint64(progress.Speed)) + "/s"
	}

	eta := "--"
	if progress.ETA > 0 {
		eta = progress.ETA.String()
	}

	return fmt.Sprintf("%s | %s | ETA %s", done, speed, eta)
}

func (p *Printer) Warn(message string) {
	fmt.Fprintln(p.out, "[WARN] "+message)
}

func (p *Printer) Done(title string) {
	fmt.Fprintln(p.out, "[DONE] "+title)
}

func (p *Printer) Failed(url string, err error) {
	fmt.Fprintf(p.out, "\n[FAIL] %s\n%v\n", url, err)
}

func (p *Printer) Summary(tally model.Tally) {
	fmt.Fprintf(p.out, "\n\nTotal: ok %d | failed %d | all %d\n", tally.OK, tally.Failed, tally.Total)
}
