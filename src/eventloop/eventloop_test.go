package eventloop

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"anemone/src/config"
	"anemone/src/launcher"
	"anemone/src/mode"
	"anemone/src/overlay"
	"anemone/src/surface"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedLauncher struct {
	choices []launcher.Choice
}

func (s *scriptedLauncher) Next(ctx context.Context) (launcher.Choice, error) {
	if err := ctx.Err(); err != nil {
		return launcher.Choice{}, err
	}
	if len(s.choices) == 0 {
		return launcher.Choice{}, launcher.ErrClosed
	}
	c := s.choices[0]
	s.choices = s.choices[1:]
	return c, nil
}

type fakeRunner struct {
	runs    []mode.Mode
	results map[mode.Mode]overlay.Result
	errs    map[mode.Mode]error
}

func (r *fakeRunner) Run(_ context.Context, m mode.Mode) (overlay.Result, error) {
	r.runs = append(r.runs, m)
	if err := r.errs[m]; err != nil {
		return overlay.Result{Mode: m}, err
	}
	if res, ok := r.results[m]; ok {
		return res, nil
	}
	return overlay.Result{Mode: m, Outcome: overlay.Cancelled}, nil
}

type fakeSettings struct {
	calls int
	err   error
}

func (s *fakeSettings) Edit(context.Context) error {
	s.calls++
	return s.err
}

type fakeDialogs struct {
	notices  []string
	blocking []string
}

func (d *fakeDialogs) Notice(_, message string)        { d.notices = append(d.notices, message) }
func (d *fakeDialogs) BlockingError(_, message string) { d.blocking = append(d.blocking, message) }

func choices(cs ...launcher.Choice) *scriptedLauncher { return &scriptedLauncher{choices: cs} }

func TestRunLoopsBackAfterEachSession(t *testing.T) {
	committed := overlay.Result{
		Mode:    mode.Caption,
		Outcome: overlay.Committed,
		Payload: overlay.Payload{Mode: mode.Caption, Lines: []string{"Hi", "!"}},
	}
	runner := &fakeRunner{results: map[mode.Mode]overlay.Result{mode.Caption: committed}}
	settings := &fakeSettings{}
	var results []overlay.Result

	l := New(Options{
		Launcher: choices(
			launcher.ModeChoice(mode.Clip),
			launcher.Choice{Kind: launcher.ChooseSettings},
			launcher.ModeChoice(mode.Caption),
			launcher.Choice{Kind: launcher.ChooseExit},
			launcher.ModeChoice(mode.Transparent),
		),
		Runner:   runner,
		Settings: settings,
		OnResult: func(r overlay.Result) { results = append(results, r) },
	})

	assert.Equal(t, ExitOK, l.Run(context.Background()))
	assert.Equal(t, []mode.Mode{mode.Clip, mode.Caption}, runner.runs)
	assert.Equal(t, 1, settings.calls)
	require.Len(t, results, 2)
	assert.Equal(t, overlay.Cancelled, results[0].Outcome)
	assert.Equal(t, committed, results[1])
}

func TestRunReturnsZeroWhenLauncherCloses(t *testing.T) {
	l := New(Options{Launcher: choices(), Runner: &fakeRunner{}})
	assert.Equal(t, ExitOK, l.Run(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l = New(Options{Launcher: choices(launcher.ModeChoice(mode.Clip)), Runner: &fakeRunner{}})
	assert.Equal(t, ExitOK, l.Run(ctx))
}

func TestCreationFailureIsFatal(t *testing.T) {
	runner := &fakeRunner{errs: map[mode.Mode]error{
		mode.Caption: &surface.CreationError{Err: errors.New("no device")},
	}}
	dialogs := &fakeDialogs{}
	l := New(Options{
		Launcher: choices(launcher.ModeChoice(mode.Caption), launcher.ModeChoice(mode.Clip)),
		Runner:   runner,
		Dialogs:  dialogs,
	})

	assert.Equal(t, ExitFailure, l.Run(context.Background()))
	assert.Equal(t, []mode.Mode{mode.Caption}, runner.runs)
	require.Len(t, dialogs.blocking, 1)
	assert.Contains(t, dialogs.blocking[0], "no device")
}

func TestNonFatalFailuresBecomeNotices(t *testing.T) {
	runner := &fakeRunner{errs: map[mode.Mode]error{
		mode.Clip:        errors.New("device lost"),
		mode.Transparent: overlay.ErrSessionActive,
	}}
	dialogs := &fakeDialogs{}
	l := New(Options{
		Launcher: choices(
			launcher.ModeChoice(mode.Clip),
			launcher.ModeChoice(mode.Transparent),
			launcher.Choice{Kind: launcher.ChooseSettings},
		),
		Runner:   runner,
		Settings: &fakeSettings{err: errors.New("editor missing")},
		Dialogs:  dialogs,
	})

	assert.Equal(t, ExitOK, l.Run(context.Background()))
	assert.Len(t, runner.runs, 2)
	assert.Empty(t, dialogs.blocking)
	require.Len(t, dialogs.notices, 2)
	assert.Contains(t, dialogs.notices[0], "device lost")
	assert.Contains(t, dialogs.notices[1], "editor missing")
}

func TestRemembersLastMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anemone.env")
	store := config.NewStore(path)
	l := New(Options{
		Launcher: choices(launcher.ModeChoice(mode.Clip), launcher.ModeChoice(mode.Transparent)),
		Runner:   &fakeRunner{},
		Store:    store,
	})
	require.Equal(t, ExitOK, l.Run(context.Background()))

	reloaded := config.NewStore(path)
	require.NoError(t, reloaded.Load())
	last, ok := reloaded.Get(config.KeyLastMode)
	require.True(t, ok)
	assert.Equal(t, "transparent", last)
}

func TestStoreWriteFailureIsNotFatal(t *testing.T) {
	dialogs := &fakeDialogs{}
	runner := &fakeRunner{}
	l := New(Options{
		Launcher: choices(launcher.ModeChoice(mode.Caption)),
		Runner:   runner,
		Store:    config.NewStore(t.TempDir()),
		Dialogs:  dialogs,
	})

	assert.Equal(t, ExitOK, l.Run(context.Background()))
	assert.Equal(t, []mode.Mode{mode.Caption}, runner.runs)
	require.Len(t, dialogs.notices, 1)
	assert.Contains(t, dialogs.notices[0], "Could not save settings")
}

func TestDelegatedChoiceReceivesOutcome(t *testing.T) {
	committed := overlay.Result{
		Mode:    mode.Clip,
		Outcome: overlay.Committed,
		Payload: overlay.Payload{Mode: mode.Clip},
	}
	failure := &surface.CreationError{Err: errors.New("no device")}
	runner := &fakeRunner{
		results: map[mode.Mode]overlay.Result{mode.Clip: committed},
		errs:    map[mode.Mode]error{mode.Caption: failure},
	}

	var replies []overlay.Result
	var replyErrs []error
	delegated := func(m mode.Mode) launcher.Choice {
		c := launcher.ModeChoice(m)
		c.Reply = func(res overlay.Result, err error) {
			replies = append(replies, res)
			replyErrs = append(replyErrs, err)
		}
		return c
	}

	l := New(Options{
		Launcher: choices(delegated(mode.Clip), delegated(mode.Caption)),
		Runner:   runner,
		Dialogs:  &fakeDialogs{},
	})
	assert.Equal(t, ExitFailure, l.Run(context.Background()))

	require.Len(t, replies, 2)
	assert.Equal(t, committed, replies[0])
	assert.NoError(t, replyErrs[0])
	assert.ErrorIs(t, replyErrs[1], failure)
}
