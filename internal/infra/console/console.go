// internal/infra/console/console.go
package console

import (
	"fmt"
	"os"

	"tg_checkin_bot/internal/app"
	"tg_checkin_bot/internal/domain/checkin"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Printer writes the human-facing run summary to stdout. Colors are dropped
// when stdout is not a terminal (cron and CI logs stay clean).
type Printer struct {
	color bool
}

func New() *Printer {
	return &Printer{color: isatty.IsTerminal(os.Stdout.Fd())}
}

func (p *Printer) render(style lipgloss.Style, glyph, text string) {
	line := glyph + " " + text
	if p.color {
		line = style.Render(line)
	}
	fmt.Println(line)
}

func (p *Printer) Step(format string, args ...any) {
	p.render(stepStyle, "➜", fmt.Sprintf(format, args...))
}

func (p *Printer) Success(format string, args ...any) {
	p.render(successStyle, "✓", fmt.Sprintf(format, args...))
}

func (p *Printer) Warn(format string, args ...any) {
	p.render(warnStyle, "⚠", fmt.Sprintf(format, args...))
}

func (p *Printer) Fail(format string, args ...any) {
	p.render(failStyle, "✗", fmt.Sprintf(format, args...))
}

// Summary prints the end-of-run result block for one provider.
func (p *Printer) Summary(prov checkin.Provider, report *checkin.Report) {
	if prov.AcceptableOutcome(report.Status) {
		p.Success("%s 任务执行完毕! 结果统计：", prov.Title)
	} else {
		p.Fail("%s 任务未达成目标", prov.Title)
	}
	p.Step("最终状态: %s", app.StatusLabel(report.Status))
	for _, line := range prov.NotifyLines {
		p.Step("%s: %s", line.Label, report.Fields[line.Key])
	}
	if report.Error != "" {
		p.Fail("严重错误: %s", report.Error)
	}
}
