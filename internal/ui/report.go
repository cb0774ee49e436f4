package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/bamsammich/taskmap/internal/task"
)

// Report prints command results. Styling is applied only when styled is
// set, normally when the output is a terminal.
type Report struct {
	w      io.Writer
	styled bool
}

// NewReport returns a Report writing to w.
func NewReport(w io.Writer, styled bool) *Report {
	return &Report{w: w, styled: styled}
}

func (r *Report) render(s lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return s.Render(text)
}

func (r *Report) taskRef(id uint32) string {
	return r.render(styleID, "#"+strconv.FormatUint(uint64(id), 10))
}

// Registered reports a new task.
func (r *Report) Registered(name string, id uint32) {
	fmt.Fprintf(r.w, "%s registering task '%s' (ID %d)\n", r.render(styleOK, "Success"), name, id)
}

// Deregistered reports a removed task.
func (r *Report) Deregistered(id uint32) {
	fmt.Fprintf(r.w, "%s deregistering task (ID %d)\n", r.render(styleOK, "Success"), id)
}

// Marked reports blocks added to a task's bitmap.
func (r *Report) Marked(id uint32, off, length uint64) {
	fmt.Fprintf(r.w, "%s adding blocks [%d, %d] to task %s.\n",
		r.render(styleOK, "Success"), off, off+length, r.taskRef(id))
}

// Unmarked reports blocks cleared from a task's bitmap.
func (r *Report) Unmarked(id uint32, off, length uint64) {
	fmt.Fprintf(r.w, "%s removing blocks [%d, %d] from task %s.\n",
		r.render(styleOK, "Success"), off, off+length, r.taskRef(id))
}

// Checked reports whether a range was fully marked.
func (r *Report) Checked(id uint32, off, length uint64, done bool) {
	verdict := r.render(styleOK, "set")
	if !done {
		verdict = r.render(styleWarn, "not set")
	}
	fmt.Fprintf(r.w, "Blocks [%d, %d] in task %s were %s.\n", off, off+length, r.taskRef(id), verdict)
}

// Fetched prints a fetched batch, one event per row.
func (r *Report) Fetched(b task.Batch) {
	if b.Dropped > 0 {
		fmt.Fprintln(r.w, r.render(styleWarn,
			fmt.Sprintf("%s events dropped since registration.", FormatCount(int64(b.Dropped)))), //nolint:gosec // G115: display only
		)
	}
	if len(b.Events) == 0 {
		fmt.Fprintln(r.w, "Received no items.")
		return
	}

	fmt.Fprintln(r.w, r.render(styleHeader,
		"UUID            \tEntry number\tGeneration\tOffset      \tState   "))
	fmt.Fprintln(r.w, r.render(styleMuted,
		"----------------\t------------\t----------\t------------\t--------"))
	for _, ev := range b.Events {
		fmt.Fprintf(r.w, "%16x\t%12d\t%10d\t%12d\t%8x\n",
			uint64(ev.UUID), ev.UUID.Entry(), ev.UUID.Generation(), ev.Offset, uint16(ev.State))
	}
}

// Tasks prints the registered tasks as a table.
func (r *Report) Tasks(infos []task.Info) {
	if len(infos) == 0 {
		fmt.Fprintln(r.w, "No tasks registered.")
		return
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("ID", "NAME", "BLOCK", "MASK", "SCOPE", "PENDING", "DROPPED", "MARKED", "REGISTERED").
		StyleFunc(func(row, _ int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingRight(1)
			if row == table.HeaderRow && r.styled {
				return styleHeader.PaddingRight(1)
			}
			return s
		})
	for _, info := range infos {
		scope := info.Scope
		if scope == "" {
			scope = "*"
		}
		t.Row(
			strconv.FormatUint(uint64(info.ID), 10),
			info.Name,
			FormatBytes(uint64(info.Granularity)),
			fmt.Sprintf("0x%02x", uint16(info.Mask)),
			scope,
			FormatCount(int64(info.Pending)),
			FormatCount(int64(info.Dropped)), //nolint:gosec // G115: display only
			FormatCount(int64(info.SetBits)), //nolint:gosec // G115: display only
			FormatAge(info.Registered),
		)
	}
	fmt.Fprintln(r.w, t.Render())
}

// Error prints err the way a failed command reports it.
func (r *Report) Error(err error) {
	fmt.Fprintf(r.w, "%s %v\n", r.render(styleError, "error:"), err)
}
