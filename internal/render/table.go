// Package render draws the prize table and status line for terminals.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/xtding233/prize-gacha/internal/catalog"
	"github.com/xtding233/prize-gacha/internal/inventory"
	"github.com/xtding233/prize-gacha/internal/machine"
)

// Table renders prizes in catalog order with their remaining stock. Names are
// padded by display width so CJK names line up.
func Table(cat *catalog.Catalog, inv inventory.Inventory, lang language.Tag) string {
	p := message.NewPrinter(lang)
	nameW := runewidth.StringWidth("Prize")
	stockW := runewidth.StringWidth("Stock")
	stock := make([]string, 0, cat.Len())
	for _, pr := range cat.Prizes() {
		if w := runewidth.StringWidth(pr.Name); w > nameW {
			nameW = w
		}
		s := p.Sprintf("%d", inv.Remaining(pr.ID))
		if len(s) > stockW {
			stockW = len(s)
		}
		stock = append(stock, s)
	}

	divider := "+" + strings.Repeat("-", nameW+4) + "+" + strings.Repeat("-", stockW+2) + "+\n"
	var b strings.Builder
	b.WriteString(divider)
	fmt.Fprintf(&b, "|   %s | %s |\n", runewidth.FillRight("Prize", nameW), runewidth.FillLeft("Stock", stockW))
	b.WriteString(divider)
	for i, pr := range cat.Prizes() {
		mark := " "
		if pr.HighTier {
			mark = "*"
		}
		fmt.Fprintf(&b, "| %s %s | %s |\n", mark, runewidth.FillRight(pr.Name, nameW), runewidth.FillLeft(stock[i], stockW))
	}
	b.WriteString(divider)
	return b.String()
}

// Terminal is a machine.Renderer that repaints a text view on every change.
// Until it has a catalog it only records inventory.
type Terminal struct {
	mu      sync.Mutex
	w       io.Writer
	cat     *catalog.Catalog
	lang    language.Tag
	inv     inventory.Inventory
	status  machine.Status
	enabled bool
}

func NewTerminal(w io.Writer, cat *catalog.Catalog, lang language.Tag) *Terminal {
	return &Terminal{w: w, cat: cat, lang: lang, enabled: true}
}

// SetCatalog switches the prize list used for the table, e.g. after a reload,
// and repaints it.
func (t *Terminal) SetCatalog(cat *catalog.Catalog, lang language.Tag) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cat, t.lang = cat, lang
	if t.inv != nil {
		fmt.Fprint(t.w, Table(t.cat, t.inv, t.lang))
	}
}

func (t *Terminal) InventoryChanged(inv inventory.Inventory) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inv = inv.Clone()
	if t.cat == nil {
		return
	}
	fmt.Fprint(t.w, Table(t.cat, t.inv, t.lang))
}

func (t *Terminal) StatusChanged(msg string, kind machine.StatusKind) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = machine.Status{Message: msg, Kind: kind}
	fmt.Fprintln(t.w, StatusLine(t.status))
}

func (t *Terminal) TriggerEnabledChanged(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	if enabled {
		fmt.Fprintln(t.w, "[d] draw  [x] decline  [r] reset  [q] quit")
	}
}

// StatusLine colours a status message by kind.
func StatusLine(s machine.Status) string {
	if s.Message == "" {
		return ""
	}
	switch s.Kind {
	case machine.StatusSuccess:
		return "\033[1;32m" + s.Message + "\033[0m"
	case machine.StatusError:
		return "\033[1;31m" + s.Message + "\033[0m"
	default:
		return "\033[2m" + s.Message + "\033[0m"
	}
}
