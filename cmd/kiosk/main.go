// Command kiosk runs the draw on a terminal: one key per command.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/language"

	"github.com/xtding233/prize-gacha/internal/app"
	"github.com/xtding233/prize-gacha/internal/config"
	"github.com/xtding233/prize-gacha/internal/logger"
	"github.com/xtding233/prize-gacha/internal/machine"
	"github.com/xtding233/prize-gacha/internal/render"
)

func main() {
	configDir := flag.String("config", "", "directory holding config.yaml")
	flag.Parse()

	var paths []string
	if *configDir != "" {
		paths = append(paths, *configDir)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	// keep the screen for the table; logs go to stderr only in prod mode
	mode := logger.ParseMode(cfg.Log.Mode)
	if mode == logger.ModeDev {
		mode = logger.ModeSilence
	}
	log := logger.New(mode)

	term := render.NewTerminal(os.Stdout, nil, language.Und)
	a, err := app.New(cfg, log, machine.Options{Renderer: term})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer a.Close()
	if err := a.Start(); err != nil {
		log.Error("reset schedule", slog.Any("err", err))
	}
	lang := language.Make(a.Messages.Lang())
	term.SetCatalog(a.Ctl.Catalog(), lang)

	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		switch strings.ToLower(strings.TrimSpace(in.Text())) {
		case "d", "":
			ch, err := a.Ctl.RequestDraw()
			if err == nil {
				<-ch
			}
		case "x":
			_, _ = a.Ctl.DeclineLastAward()
		case "r":
			a.Ctl.ResetInventory()
			term.SetCatalog(a.Ctl.Catalog(), lang)
		case "q":
			return
		}
	}
}
