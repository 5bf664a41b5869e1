package launcher

import (
	"context"
	"log"
	"runtime"
	"sync"
	"sync/atomic"

	"anemone/src/config"
	"anemone/src/hotkey"
	"anemone/src/mode"
	"anemone/src/overlay"
	"anemone/src/session"
	"anemone/src/singleinstance"

	"github.com/getlantern/systray"
)

// Tray offers the choices through a notification-area menu and global hotkeys.
// Both run on their own goroutines and only post into a channel that Next reads.
// Between handing out a choice and the next call to Next the loop is busy,
// and anything posted meanwhile is dropped.
type Tray struct {
	cfg       *config.Config
	choices   chan Choice
	busy      atomic.Bool
	hotkeys   *hotkey.Listener
	startOnce sync.Once
	closeOnce sync.Once
	done      chan struct{}
}

func NewTray(cfg *config.Config) *Tray {
	return &Tray{
		cfg:     cfg,
		choices: make(chan Choice, 1),
		hotkeys: hotkey.NewListener(),
		done:    make(chan struct{}),
	}
}

// Start shows the tray icon and registers the mode hotkeys. A hotkey that
// cannot be parsed is logged and skipped.
func (t *Tray) Start() {
	t.startOnce.Do(func() {
		for _, m := range mode.All {
			combo := t.cfg.Hotkeys[m]
			if err := t.hotkeys.Register(combo, func() { t.post(ModeChoice(m)) }); err != nil {
				log.Printf("Tray: %v", err)
			}
		}
		t.hotkeys.Start()

		go func() {
			runtime.LockOSThread()
			systray.Run(t.onReady, t.onExit)
		}()
	})
}

func (t *Tray) Next(ctx context.Context) (Choice, error) {
	t.busy.Store(false)
	select {
	case c := <-t.choices:
		t.busy.Store(true)
		return c, nil
	case <-t.done:
		return Choice{}, ErrClosed
	case <-ctx.Done():
		return Choice{}, ctx.Err()
	}
}

// Close removes the tray icon and stops the hotkey hook.
func (t *Tray) Close() {
	t.closeOnce.Do(func() {
		t.hotkeys.Stop()
		systray.Quit()
	})
}

// Serve forwards requests delegated by other Anemone processes until ctx
// is cancelled or srv closes. A request that arrives while an overlay is
// open is answered with singleinstance.ErrBusy.
func (t *Tray) Serve(ctx context.Context, srv singleinstance.Server) {
	for {
		conn, err := srv.Next(ctx)
		if err != nil {
			log.Printf("Tray: delegation stopped: %v", err)
			return
		}
		c := ModeChoice(conn.Request().Mode)
		c.Reply = func(res overlay.Result, err error) { reply(conn, res, err) }
		if !t.post(c) {
			_ = conn.RespondError(singleinstance.ErrBusy.Error())
			_ = conn.Close()
		}
	}
}

func reply(conn singleinstance.Conn, res overlay.Result, err error) {
	defer conn.Close()
	switch {
	case err != nil:
		err = conn.RespondError(err.Error())
	case res.Outcome == overlay.Committed:
		err = conn.RespondCommitted(session.Text(res.Payload))
	default:
		err = conn.RespondCancelled()
	}
	if err != nil {
		log.Printf("Tray: reply to delegated request failed: %v", err)
	}
}

// post queues a choice without blocking. While the loop is busy with an
// overlay, or a choice is already queued, further requests are dropped.
func (t *Tray) post(c Choice) bool {
	if t.busy.Load() {
		log.Printf("Tray: busy, dropping %s", c)
		return false
	}
	select {
	case t.choices <- c:
		log.Printf("Tray: queued %s", c)
		return true
	default:
		log.Printf("Tray: busy, dropping %s", c)
		return false
	}
}

func (t *Tray) onReady() {
	systray.SetIcon(Icon())
	systray.SetTitle("Anemone")
	systray.SetTooltip("Anemone overlay")

	for _, m := range mode.All {
		item := systray.AddMenuItem(m.Title(), m.Title()+" overlay ("+t.cfg.Hotkeys[m]+")")
		t.forward(item, ModeChoice(m))
	}
	systray.AddSeparator()
	t.forward(systray.AddMenuItem("Settings", "Edit settings"), Choice{Kind: ChooseSettings})
	t.forward(systray.AddMenuItem("Exit", "Quit Anemone"), Choice{Kind: ChooseExit})
}

func (t *Tray) forward(item *systray.MenuItem, c Choice) {
	go func() {
		for range item.ClickedCh {
			t.post(c)
		}
	}()
}

func (t *Tray) onExit() {
	log.Printf("Tray: exited")
	close(t.done)
}
