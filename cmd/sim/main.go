// Command sim checks a catalog offline: observed vs. configured prize
// frequencies, and when each prize sells out while a full stock is drained.
package main

import (
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/xtding233/prize-gacha/internal/catalog"
	"github.com/xtding233/prize-gacha/internal/gacha"
)

func main() {
	dir := flag.String("dir", "", "catalog directory (default: built-in catalog)")
	campaign := flag.String("campaign", "default", "campaign name")
	variant := flag.String("variant", "", "variant name")
	draws := flag.Int("draws", 100000, "draws for the frequency check")
	trials := flag.Int("trials", 1000, "full-stock depletion trials")
	exclude := flag.Bool("exclude-high-tier", false, "simulate after a decline")
	seed := flag.Uint64("seed", 0, "rng seed; 0 uses crypto/rand")
	quiet := flag.Bool("quiet", false, "hide the progress bar")
	flag.Parse()

	var fsys fs.FS = catalog.Builtin
	if *dir != "" {
		fsys = os.DirFS(*dir)
	}
	cat, err := catalog.NewLoader(fsys).Load(*campaign, *variant)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load catalog:", err)
		os.Exit(1)
	}
	rng := gacha.DefaultRNG()
	if *seed != 0 {
		rng = gacha.NewSeededRNG(*seed)
	}
	p := message.NewPrinter(language.English)

	freq, err := gacha.SimulateFrequencies(cat, *draws, *exclude, rng)
	if err != nil {
		fmt.Fprintln(os.Stderr, "frequency check:", err)
		os.Exit(1)
	}
	fmt.Print(frequencyTable(p, freq))

	if *trials <= 0 {
		return
	}
	bar := pb.StartNew(*trials)
	if *quiet {
		bar.SetWriter(io.Discard)
	}
	start := time.Now()
	dep, err := gacha.RunDepletion(cat, *trials, rng, func() { bar.Increment() })
	bar.Finish()
	if err != nil {
		fmt.Fprintln(os.Stderr, "depletion:", err)
		os.Exit(1)
	}
	fmt.Print(depletionTable(p, cat, dep))
	p.Printf("used: %.2f seconds\n", time.Since(start).Seconds())
}

func frequencyTable(p *message.Printer, rep gacha.FrequencyReport) string {
	header := []string{"Prize", "Count", "Observed", "Expected"}
	rows := make([][]string, 0, len(rep.Prizes))
	for _, f := range rep.Prizes {
		rows = append(rows, []string{
			f.Name,
			p.Sprintf("%d", f.Count),
			p.Sprintf("%.3f %%", 100*f.Observed),
			p.Sprintf("%.3f %%", 100*f.Expected),
		})
	}
	title := p.Sprintf("Frequencies over %d draws (chi2 %.2f, p %.3f)", rep.Draws, rep.ChiSq, rep.PValue)
	return fmtTable(title, header, rows)
}

func depletionTable(p *message.Printer, cat *catalog.Catalog, rep gacha.DepletionReport) string {
	header := []string{"Prize", "Mean", "P50", "P90", "P99"}
	rows := make([][]string, 0, cat.Len())
	for _, pr := range cat.Prizes() {
		s := rep.SoldOutAt[pr.ID]
		rows = append(rows, []string{
			pr.Name,
			p.Sprintf("%.1f", s.Mean),
			p.Sprintf("%.0f", s.P50),
			p.Sprintf("%.0f", s.P90),
			p.Sprintf("%.0f", s.P99),
		})
	}
	title := p.Sprintf("Sold out at draw # (%d trials, %d draws each)", rep.Trials, rep.TotalDraw)
	return fmtTable(title, header, rows)
}

// fmtTable lays out rows under a centred title; the first column is left
// aligned, the rest right aligned.
func fmtTable(title string, header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, c := range r {
			if w := runewidth.StringWidth(c); w > widths[i] {
				widths[i] = w
			}
		}
	}
	inner := len(widths) - 1
	for _, w := range widths {
		inner += w + 2
	}
	if tw := runewidth.StringWidth(title) + 2; tw > inner {
		widths[0] += tw - inner
		inner = tw
	}

	var b strings.Builder
	top := "+" + strings.Repeat("-", inner) + "+\n"
	divider := "+"
	for _, w := range widths {
		divider += strings.Repeat("-", w+2) + "+"
	}
	divider += "\n"

	titleW := runewidth.StringWidth(title)
	left := (inner - titleW) / 2
	b.WriteString(top)
	b.WriteString("|" + strings.Repeat(" ", left) + title + strings.Repeat(" ", inner-titleW-left) + "|\n")
	b.WriteString(divider)
	writeRow := func(r []string) {
		b.WriteString("|")
		for i, c := range r {
			if i == 0 {
				b.WriteString(" " + runewidth.FillRight(c, widths[i]) + " |")
			} else {
				b.WriteString(" " + runewidth.FillLeft(c, widths[i]) + " |")
			}
		}
		b.WriteString("\n")
	}
	writeRow(header)
	b.WriteString(divider)
	for _, r := range rows {
		writeRow(r)
	}
	b.WriteString(divider)
	return b.String()
}
