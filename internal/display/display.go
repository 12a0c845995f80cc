// Package display renders link and ledger tables for the CLI, shaped by
// the user's display settings.
package display

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/boardlink/boardlink/internal/journal"
	"github.com/boardlink/boardlink/internal/ledger"
	"github.com/boardlink/boardlink/internal/link"
	"github.com/boardlink/boardlink/internal/settings"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))

// Options shape table output. They come straight from the settings
// snapshot and never feed back into link behavior.
type Options struct {
	ShowProcessID bool
	Format        string
	// AbsPaths renders fully resolved read/write paths.
	AbsPaths bool
}

// FromSettings maps a settings snapshot onto display options.
func FromSettings(s settings.Settings) Options {
	return Options{
		ShowProcessID: s.Display.Info.ProcessID,
		Format:        s.Display.Table.Format,
	}
}

// Links renders a table of descriptors.
func Links(descs []link.Descriptor, opts Options) string {
	headers := []string{"ID", "NAME", "STATE", "READ", "WRITE"}
	if opts.ShowProcessID {
		headers = append(headers, "PID")
	}

	var rows [][]string
	for _, d := range descs {
		read, write := d.ReadPath, d.WritePath
		if opts.AbsPaths {
			read, write = d.AbsReadPattern(), d.AbsWritePath()
		}
		row := []string{strconv.Itoa(d.ID), d.Name, string(d.State()), read, write}
		if opts.ShowProcessID {
			row = append(row, strconv.Itoa(d.ProcID))
		}
		rows = append(rows, row)
	}
	return render(headers, rows, opts.Format)
}

// Ledger renders the ownership rows.
func Ledger(rows []ledger.Row, opts Options) string {
	headers := []string{"PATH", "LINK"}
	if opts.ShowProcessID {
		headers = append(headers, "PID")
	}

	var out [][]string
	for _, r := range rows {
		row := []string{r.Path, strconv.Itoa(r.LinkID)}
		if opts.ShowProcessID {
			row = append(row, strconv.Itoa(r.ProcID))
		}
		out = append(out, row)
	}
	return render(headers, out, opts.Format)
}

// History renders journal entries.
func History(entries []journal.Entry, opts Options) string {
	headers := []string{"TIME", "LINK", "ACTION", "PATH", "DETAIL"}
	var rows [][]string
	for _, e := range entries {
		rows = append(rows, []string{
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			strconv.Itoa(e.LinkID),
			string(e.Action),
			e.Path,
			e.Detail,
		})
	}
	return render(headers, rows, opts.Format)
}

func render(headers []string, rows [][]string, format string) string {
	if format == "markdown" {
		return renderMarkdown(headers, rows)
	}

	border := lipgloss.RoundedBorder()
	if format == "plain" {
		border = lipgloss.HiddenBorder()
	}

	t := table.New().
		Border(border).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...)
	return t.Render()
}

func renderMarkdown(headers []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "| %s |\n", strings.Join(headers, " | "))
	seps := make([]string, len(headers))
	for i := range seps {
		seps[i] = "---"
	}
	fmt.Fprintf(&b, "| %s |\n", strings.Join(seps, " | "))
	for _, row := range rows {
		fmt.Fprintf(&b, "| %s |\n", strings.Join(row, " | "))
	}
	return strings.TrimRight(b.String(), "\n")
}
