// Package console is the terminal front end: it reads the player's tactic
// choices line by line and renders round outcomes, encounter boundaries and
// the final session summary.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/outplay/internal/game/combat"
	"github.com/cory-johannsen/outplay/internal/game/combatant"
	"github.com/cory-johannsen/outplay/internal/game/session"
	"github.com/cory-johannsen/outplay/internal/game/tactic"
	"github.com/cory-johannsen/outplay/internal/game/tower"
)

type line struct {
	text string
	err  error
}

// Options configures a Console.
type Options struct {
	// Color enables ANSI styling.
	Color  bool
	Logger *zap.Logger
}

// Console implements combat.Chooser and session.Reporter over a line-based
// reader and a writer.
//
// Lines are pumped from the reader by one goroutine so a blocked read never
// outlives a cancelled choice; the pending line is kept for the next prompt.
type Console struct {
	in     io.Reader
	out    io.Writer
	pal    palette
	logger *zap.Logger

	once  sync.Once
	lines chan line
}

// New creates a Console.
//
// Precondition: in and out are non-nil.
func New(in io.Reader, out io.Writer, opts Options) *Console {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		in:     in,
		out:    out,
		pal:    palette(opts.Color),
		logger: logger,
		lines:  make(chan line),
	}
}

func (c *Console) pump() {
	defer close(c.lines)
	sc := bufio.NewScanner(c.in)
	for sc.Scan() {
		c.lines <- line{text: sc.Text()}
	}
	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	c.lines <- line{err: err}
}

// readLine blocks for the next input line or ctx.
func (c *Console) readLine(ctx context.Context) (string, error) {
	c.once.Do(func() { go c.pump() })
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// ChooseTactic shows the round header and menu, then reads until a valid
// tactic arrives. "q", "quit", "exit" and end of input return combat.ErrAbort;
// anything else unparseable re-prompts.
func (c *Console) ChooseTactic(ctx context.Context, view combat.View) (tactic.Tactic, error) {
	c.printf("%s", c.renderView(view))
	for {
		c.printf("%s", c.renderMenu())
		text, err := c.readLine(ctx)
		if err == io.EOF {
			c.printf("\n")
			return tactic.Unknown, combat.ErrAbort
		}
		if err != nil {
			return tactic.Unknown, err
		}
		switch strings.ToLower(strings.TrimSpace(text)) {
		case "q", "quit", "exit":
			return tactic.Unknown, combat.ErrAbort
		case "":
			continue
		}
		t, err := tactic.Parse(text)
		if err != nil {
			c.logger.Debug("invalid tactic input", zap.String("input", text))
			c.printf("%s\n", c.pal.f(Red, "%s. Choose 1-4 or a tactic name.", err))
			continue
		}
		return t, nil
	}
}

// Observe renders one resolved round. It has the shape of
// combat.Controller.Observer.
func (c *Console) Observe(o combat.RoundOutcome) {
	c.printf("%s", c.renderOutcome(o))
}

// EncounterStarted announces the floor's opponent.
func (c *Console) EncounterStarted(floor tower.Floor, opp combatant.OpponentSnapshot) {
	title := fmt.Sprintf("Floor %d", floor.Number)
	if floor.Name != "" {
		title += ": " + floor.Name
	}
	c.printf("\n%s\n", c.pal.c(Bold+BrightYellow, title))
	c.printf("%s\n", c.pal.f(Yellow, "%s blocks the way. HP %s  aggression %d  patience %d  adaptation %d",
		opp.Name, opp.Health, opp.Traits.Aggression, opp.Traits.Patience, opp.Traits.AdaptationRate))
}

// EncounterEnded announces the result and any scar.
func (c *Console) EncounterEnded(_ tower.Floor, res combat.Result, scar string) {
	color := BrightRed
	switch res {
	case combat.ResultVictory:
		color = BrightGreen
	case combat.ResultExit:
		color = Dim
	}
	c.printf("\n%s\n", c.pal.c(Bold+color, resultText(res)))
	if scar != "" {
		c.printf("%s\n", c.pal.f(Magenta, "You carry a new scar: %s.", scar))
	}
}

// PrintSummary renders the end-of-session summary.
func (c *Console) PrintSummary(s session.Summary) {
	c.printf("%s", c.renderSummary(s))
}

var _ combat.Chooser = (*Console)(nil)
var _ session.Reporter = (*Console)(nil)
