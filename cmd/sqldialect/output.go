package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/johndauphine/sqldialect/internal/dialect"
	"github.com/johndauphine/sqldialect/internal/metadata"
	"github.com/johndauphine/sqldialect/internal/snapshot"
	"github.com/johndauphine/sqldialect/internal/sqlfrag"
	"golang.org/x/term"
)

var (
	// Colors
	colorPurple = lipgloss.Color("#7D56F4")
	colorGreen  = lipgloss.Color("#04B575")
	colorRed    = lipgloss.Color("#FF4141")
	colorGray   = lipgloss.Color("#626262")
	colorBlue   = lipgloss.Color("#007BFF")

	styleHeading = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true)

	styleKey = lipgloss.NewStyle().
			Foreground(colorGray).
			Width(16)

	styleSQL = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBlue).
			Padding(0, 1)

	styleYes = lipgloss.NewStyle().Foreground(colorGreen)
	styleNo  = lipgloss.NewStyle().Foreground(colorRed)
	styleDim = lipgloss.NewStyle().Foreground(colorGray)
)

type fdWriter interface {
	io.Writer
	Fd() uintptr
}

func isTerminal(w fdWriter) bool {
	return term.IsTerminal(int(w.Fd()))
}

// printer writes plain text, styled only when stdout is a terminal.
type printer struct {
	w      io.Writer
	styled bool
}

func newPrinter() *printer {
	return &printer{w: os.Stdout, styled: isTerminal(os.Stdout)}
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p *printer) heading(title string) {
	fmt.Fprintln(p.w, p.render(styleHeading, title))
}

func (p *printer) item(text string) {
	fmt.Fprintln(p.w, "  "+text)
}

func (p *printer) row(key string, values ...string) {
	var k string
	if p.styled {
		k = styleKey.Render(key)
	} else {
		k = fmt.Sprintf("%-16s", key)
	}
	fmt.Fprintln(p.w, strings.TrimRight("  "+k+" "+strings.Join(values, "  "), " "))
}

func (p *printer) flag(ok bool) string {
	if ok {
		return p.render(styleYes, "yes")
	}
	return p.render(styleNo, "no")
}

func (p *printer) sql(frag *sqlfrag.Fragment) {
	text := frag.SQL()
	if p.styled {
		text = styleSQL.Render(text)
	}
	fmt.Fprintln(p.w, text)
	if params := frag.Params(); len(params) > 0 {
		fmt.Fprintln(p.w, p.render(styleDim, fmt.Sprintf("-- params: %v", params)))
	}
}

func printDialect(p *printer, d *dialect.Dialect) {
	p.heading("Dialect")
	p.row("name", d.Name())
	p.row("product", d.ProductName())
	p.row("default schema", d.DefaultSchema())
	p.row("limit", p.flag(d.SupportsLimit()))
	p.row("offset", p.flag(d.SupportsOffset()))
	p.row("select concat", p.flag(d.SupportsSelectConcat()))
	median, ok := d.MedianFunction()
	if !ok {
		median = p.flag(false)
	}
	p.row("median", median)
	_, catalog := d.Catalog()
	p.row("catalog", p.flag(catalog))
	p.row("reserved words", strconv.Itoa(len(d.ReservedWords())))
}

func printTable(p *printer, t metadata.Table) {
	p.heading(t.FullName())
	for _, col := range t.Columns {
		typ := col.SQLTypeName
		if col.Scale > 0 {
			typ += "(" + strconv.Itoa(col.Scale) + ")"
		}
		var notes []string
		if !col.Nullable {
			notes = append(notes, "not null")
		}
		if col.AutoIncrement {
			notes = append(notes, "auto increment")
		}
		if col.Default != "" {
			notes = append(notes, "default "+col.Default)
		}
		p.row(col.Name, typ, p.render(styleDim, strings.Join(notes, ", ")))
	}
	if t.HasPK() {
		names := make([]string, len(t.PrimaryKey))
		for i, k := range t.PrimaryKey {
			names[i] = k.Name
		}
		p.row("primary key", strings.Join(names, ", "))
	}
	fmt.Fprintln(p.w)
}

func printChanges(p *printer, changes []snapshot.Change) {
	p.heading("Changes since snapshot")
	if len(changes) == 0 {
		p.item("none")
		return
	}
	for _, ch := range changes {
		p.row(ch.Table, string(ch.Kind))
		for _, d := range ch.Details {
			p.item("  " + d)
		}
	}
}
