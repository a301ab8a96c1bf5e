package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"wikiterm/config"
	"wikiterm/favourites"
	"wikiterm/history"
	"wikiterm/render"
	"wikiterm/session"
	"wikiterm/theme"
	"wikiterm/viewport"
)

// app owns the controller and the screen. Only the loop goroutine touches
// it; input, fetches and resizes arrive over channels.
type app struct {
	cfg       *config.Config
	ctrl      *viewport.Controller
	keys      *config.KeyMatcher
	theme     *theme.Theme
	canvas    *render.Canvas
	spinner   *render.Spinner
	fetches   *dispatcher
	menu      *menu
	favs      *favourites.Store
	errNotice bool
	logger    *slog.Logger
	out       io.Writer
	quit      bool
}

func run(opts options) error {
	// Load configuration (defaults + user overrides)
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, closeLog := setupLogger(cfg)
	defer closeLog()

	var notices []string
	th, ok := theme.ByName(cfg.Display.Theme)
	if !ok {
		th = theme.DefaultDark
		notices = append(notices, fmt.Sprintf("unknown theme %q", cfg.Display.Theme))
	}
	keys, err := config.NewKeyMatcher(cfg.Keybindings)
	if err != nil {
		logger.Warn("bad keybindings", "error", err)
		notices = append(notices, err.Error())
	}

	favs, err := favourites.Load()
	if err != nil {
		logger.Warn("favourites unreadable", "error", err)
		favs = &favourites.Store{}
	}

	// Decide what to open before taking over the terminal so that errors
	// print normally.
	target, err := parseTarget(cfg, opts)
	if err != nil {
		return err
	}

	fetcher, client, closeCache := newFetcher(cfg, logger)
	defer closeCache()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	identifier, err := resolveQuery(ctx, client, target)
	if err != nil {
		return err
	}
	var sess *session.Session
	if identifier == "" && cfg.Session.RestoreSession {
		sess, err = session.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("session unreadable", "error", err)
		}
	}
	if identifier == "" && sess.Empty() {
		return fmt.Errorf("no page given and no session to restore (see wikiterm -h)")
	}

	term, err := render.NewTerminal(os.Stdin)
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	if err := term.EnterRawMode(); err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	defer term.RestoreMode()
	render.EnterAltScreen(os.Stdout)
	defer render.ExitAltScreen(os.Stdout)

	width, height, err := term.Size()
	if err != nil {
		width, height = 80, 24
	}

	a := &app{
		cfg:     cfg,
		keys:    keys,
		favs:    favs,
		theme:   th,
		canvas:  render.NewCanvas(width, height),
		spinner: render.NewSpinner(render.SpinnerBraille),
		fetches: newDispatcher(ctx, fetcher, logger),
		logger:  logger,
		out:     os.Stdout,
	}
	hist := history.New(cfg.History.Capacity)
	a.ctrl, err = viewport.New(width, a.contentHeight(height), viewport.WithHistory(hist), viewport.WithLogger(logger))
	if err != nil {
		return err
	}

	if identifier != "" {
		a.dispatch(a.ctrl.Navigate(identifier, target.Anchor))
	} else {
		if t, ok := theme.ByName(sess.Theme); ok {
			a.theme = t
		}
		hist.Restore(sess.Back, sess.Forward)
		a.dispatch(a.ctrl.Reopen(sess.Current))
		logger.Info("restoring session", "identifier", sess.Current.Identifier)
	}
	if len(notices) > 0 {
		a.ctrl.SetNotice(strings.Join(notices, "; "))
		a.errNotice = true
	}

	a.loop(ctx)
	a.fetches.stop()
	a.saveSession()
	return nil
}

func (a *app) loop(ctx context.Context) {
	keyCh := make(chan string, 64)
	go readKeys(ctx, os.Stdin, keyCh)

	// Handle terminal resize
	resizeCh := make(chan os.Signal, 1)
	signal.Notify(resizeCh, syscall.SIGWINCH)
	defer signal.Stop(resizeCh)

	ticker := time.NewTicker(a.spinner.Interval())
	defer ticker.Stop()

	a.draw()
	for !a.quit {
		select {
		case key, ok := <-keyCh:
			if !ok {
				return
			}
			a.key(key)
		case resp := <-a.fetches.responses:
			a.resolve(resp)
		case <-resizeCh:
			a.resize()
		case now := <-ticker.C:
			if a.ctrl.Pending() == nil || !a.spinner.Tick(now) {
				continue
			}
		}
		a.draw()
	}
}

func (a *app) contentHeight(height int) int {
	if a.cfg.Display.ShowStatusBar {
		height--
	}
	return max(height, 1)
}

func (a *app) key(key string) {
	a.errNotice = false

	if a.ctrl.Mode() == viewport.Searching {
		if cmd, ok := searchKey(key); ok {
			a.handle(cmd)
		}
		return
	}
	if key == "<c-c>" {
		a.quit = true
		return
	}
	if a.menu != nil {
		a.menuKey(key)
		return
	}

	action, ok := a.keys.Feed(key)
	if !ok {
		return
	}
	switch action {
	case config.ActionQuit:
		a.quit = true
	case config.ActionContents:
		a.openContents()
	case config.ActionFavourites:
		a.menu = favouritesMenu(a.favs.Favourites)
	case config.ActionAddFavourite:
		a.addFavourite()
	case config.ActionToggleTheme:
		a.theme = theme.Variant(a.theme)
		a.logger.Debug("theme changed", "theme", a.theme.Name)
	default:
		if kind, ok := commands[action]; ok {
			a.handle(viewport.Command{Kind: kind})
		}
	}
}

// menuKey drives an open overlay menu with the scroll and link bindings.
func (a *app) menuKey(key string) {
	switch key {
	case "<esc>":
		a.menu = nil
		return
	case "x", "<del>":
		if a.menu.title == "Favourites" && len(a.menu.items) > 0 {
			a.removeFavourite(a.menu.selected)
			a.menu.remove()
			return
		}
	}
	action, ok := a.keys.Feed(key)
	if !ok {
		return
	}
	page := max(a.canvas.Height()-5, 1)
	switch action {
	case config.ActionScrollDown, config.ActionNextLink:
		a.menu.move(1)
	case config.ActionScrollUp, config.ActionPreviousLink:
		a.menu.move(-1)
	case config.ActionPageDown, config.ActionHalfPageDown:
		a.menu.move(page)
	case config.ActionPageUp, config.ActionHalfPageUp:
		a.menu.move(-page)
	case config.ActionTop, config.ActionFirstLink:
		a.menu.move(-len(a.menu.items))
	case config.ActionBottom, config.ActionLastLink:
		a.menu.move(len(a.menu.items))
	case config.ActionActivateLink:
		if len(a.menu.items) == 0 {
			return
		}
		item := a.menu.current()
		a.menu = nil
		if item.identifier != "" {
			page, anchor, _ := strings.Cut(item.identifier, "#")
			a.dispatch(a.ctrl.Navigate(page, anchor))
			return
		}
		a.handle(viewport.Command{Kind: viewport.JumpToToc, Block: item.block})
	case config.ActionContents, config.ActionFavourites, config.ActionQuit:
		a.menu = nil
	}
}

func (a *app) openContents() {
	v := a.ctrl.View()
	switch {
	case a.ctrl.Document() == nil:
		a.ctrl.SetNotice("no page loaded")
	case len(v.TOC) == 0:
		a.ctrl.SetNotice("this page has no sections")
	default:
		a.menu = contentsMenu(v.TOC, v.Top)
	}
}

func (a *app) addFavourite() {
	doc := a.ctrl.Document()
	if doc == nil {
		a.ctrl.SetNotice("no page loaded")
		return
	}
	if !a.favs.Add(doc.Identifier, doc.Title) {
		a.ctrl.SetNotice("already a favourite: " + doc.Title)
		return
	}
	if err := a.favs.Save(); err != nil {
		a.logger.Warn("saving favourites failed", "error", err)
		a.ctrl.SetNotice("could not save favourites: " + err.Error())
		a.errNotice = true
		return
	}
	a.ctrl.SetNotice("added to favourites: " + doc.Title)
}

func (a *app) removeFavourite(i int) {
	if !a.favs.Remove(i) {
		return
	}
	if err := a.favs.Save(); err != nil {
		a.logger.Warn("saving favourites failed", "error", err)
	}
}

func (a *app) handle(cmd viewport.Command) {
	eff, err := a.ctrl.Handle(cmd)
	if err != nil {
		a.logger.Debug("command failed", "command", cmd.Kind, "error", err)
	}
	if eff.Request != nil {
		a.dispatch(*eff.Request)
	}
}

func (a *app) dispatch(req viewport.NavigationRequest) {
	a.spinner.Reset()
	a.fetches.dispatch(req)
}

func (a *app) resolve(resp viewport.Response) {
	err := a.ctrl.Resolve(resp)
	switch {
	case errors.Is(err, viewport.ErrStaleResponse):
		a.logger.Debug("dropped stale response", "id", resp.ID)
	case err != nil:
		a.errNotice = true
		a.logger.Warn("navigation failed", "error", err)
	default:
		a.menu = nil
	}
}

func (a *app) resize() {
	width, height, err := render.TerminalSize()
	if err != nil {
		return
	}
	a.canvas = render.NewCanvas(width, height)
	a.handle(viewport.Command{Kind: viewport.Resize, Width: width, Height: a.contentHeight(height)})
}

func (a *app) draw() {
	paint(a.canvas, frame{
		view:      a.ctrl.View(),
		theme:     a.theme,
		statusBar: a.cfg.Display.ShowStatusBar,
		percent:   a.cfg.Display.ShowScrollPercentage,
		spinner:   a.spinner.Frame(),
		elapsed:   a.spinner.Elapsed(time.Now()),
		keys:      a.keys.Pending(),
		errNotice: a.errNotice,
		menu:      a.menu,
	})
	a.canvas.RenderTo(a.out)
}

func (a *app) saveSession() {
	if !a.cfg.Session.RestoreSession {
		return
	}
	cur, ok := a.ctrl.Current()
	if !ok {
		return
	}
	hist := a.ctrl.History()
	s := &session.Session{
		Current: cur,
		Back:    hist.Back(),
		Forward: hist.Forward(),
		Theme:   a.theme.Name,
	}
	if err := session.Save(s); err != nil {
		a.logger.Warn("saving session failed", "error", err)
	}
}
