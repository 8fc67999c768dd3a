package console

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/outplay/internal/game/combat"
	"github.com/cory-johannsen/outplay/internal/game/combatant"
	"github.com/cory-johannsen/outplay/internal/game/session"
	"github.com/cory-johannsen/outplay/internal/game/tactic"
)

var narration = map[combat.Resolution]string{
	combat.ResolutionStudied:         "You study your opponent's movements.",
	combat.ResolutionExposurePenalty: "You study too long and take a hit.",
	combat.ResolutionPressured:       "You press forward, forcing them back.",
	combat.ResolutionForcedGuard:     "You press forward; they hold their guard.",
	combat.ResolutionPerfectCounter:  "They take the bait. Perfect counter!",
	combat.ResolutionBaitWhiffed:     "Your feint draws nothing and leaves you open.",
	combat.ResolutionStrike:          "You strike.",
	combat.ResolutionBlocked:         "Your strike is blocked.",
	combat.ResolutionTooExhausted:    "Too exhausted to attack, you catch your breath.",
}

var opponentVerb = map[tactic.Action]string{
	tactic.ActionAttack:  "attacks",
	tactic.ActionDefend:  "defends",
	tactic.ActionWait:    "waits",
	tactic.ActionCounter: "readies a counter",
}

func resultText(r combat.Result) string {
	switch r {
	case combat.ResultVictory:
		return "VICTORY. Your opponent falls."
	case combat.ResultPhysicalTrauma:
		return "PHYSICAL TRAUMA. You took too many risks."
	case combat.ResultMentalCollapse:
		return "MENTAL COLLAPSE. Your focus is gone."
	case combat.ResultEscapedCowardly:
		return "ESCAPED COWARDLY. You watched until it was too late."
	case combat.ResultDefeat:
		return "DEFEAT."
	case combat.ResultExit:
		return "You leave the fight."
	}
	return r.String()
}

func (c *Console) statusLine(p combatant.PlayerSnapshot, o combatant.OpponentSnapshot) string {
	return fmt.Sprintf("%s  HP %s  Focus %s  Insight %d  Risk %d  |  %s  HP %s",
		c.pal.c(BrightWhite, p.Name), c.pal.c(Green, p.Health.String()), c.pal.c(Cyan, p.Focus.String()),
		p.Insight, p.Risk, c.pal.c(BrightRed, o.Name), c.pal.c(Red, o.Health.String()))
}

func (c *Console) renderView(v combat.View) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(c.pal.f(Bold, "Round %d", v.Round))
	b.WriteString("\n")
	b.WriteString(c.statusLine(v.Player, v.Opponent))
	b.WriteString("\n")
	if v.Recent != "" {
		b.WriteString(c.pal.f(Dim, "Recent: %s", v.Recent))
		b.WriteString("\n")
	}
	return b.String()
}

func (c *Console) renderMenu() string {
	var b strings.Builder
	for i, t := range tactic.All {
		fmt.Fprintf(&b, "  %s %s\n", c.pal.f(BrightCyan, "%d)", i+1), t)
	}
	b.WriteString("> ")
	return b.String()
}

func (c *Console) renderOutcome(o combat.RoundOutcome) string {
	var b strings.Builder

	for _, f := range o.Fatigue {
		b.WriteString(c.pal.f(Magenta, "Fatigue from repetition (%s)", f))
		b.WriteString("\n")
	}
	if o.Predictable() {
		b.WriteString(c.pal.f(Yellow, "You are becoming predictable. Effectiveness %d%%", percent(o.MemoryModifier)))
		b.WriteString("\n")
	}
	if o.Anticipated() {
		b.WriteString(c.pal.f(Yellow, "%s anticipates you. Effectiveness %d%%", o.Opponent.Name, percent(o.AdaptationModifier)))
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("You %s. %s %s.\n", strings.ToLower(o.Tactic.String()), o.Opponent.Name, opponentVerb[o.OpponentAction]))
	if n, ok := narration[o.Resolution]; ok {
		b.WriteString(c.pal.c(White, n))
		b.WriteString("\n")
	}
	if o.PressureRoll != nil {
		b.WriteString(c.pal.f(Dim, "Rolled %s", o.PressureRoll))
		b.WriteString("\n")
	}
	if o.DamageDealt > 0 {
		b.WriteString(c.pal.f(BrightGreen, "You deal %d damage.", o.DamageDealt))
		b.WriteString("\n")
	}
	if o.DamageTaken > 0 {
		b.WriteString(c.pal.f(BrightRed, "You take %d damage.", o.DamageTaken))
		b.WriteString("\n")
	}
	if o.InsightGained > 0 {
		b.WriteString(c.pal.f(BrightCyan, "Insight +%d", o.InsightGained))
		b.WriteString("\n")
	}
	var changes []string
	for _, ch := range o.Changes {
		if ch.Stat == combatant.StatHealth || ch.Stat == combatant.StatInsight {
			continue
		}
		changes = append(changes, ch.String())
	}
	if len(changes) > 0 {
		b.WriteString(c.pal.c(Dim, strings.Join(changes, ", ")))
		b.WriteString("\n")
	}
	b.WriteString(c.statusLine(o.Player, o.Opponent))
	b.WriteString("\n")
	return b.String()
}

func (c *Console) renderSummary(s session.Summary) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(c.pal.c(Bold+BrightYellow, "=== Session Summary ==="))
	b.WriteString("\n")
	rows := [][2]string{
		{"Player", s.PlayerName},
		{"Fights", fmt.Sprint(s.Fights)},
		{"Floors cleared", fmt.Sprint(s.FloorsCleared)},
		{"Dominant decision", s.DominantDecision},
		{"Final HP", s.FinalHP},
		{"Ending", s.EndingType},
	}
	scars := "none"
	if len(s.Scars) > 0 {
		scars = strings.Join(s.Scars, ", ")
	}
	rows = append(rows, [2]string{"Scars", scars})
	for _, r := range rows {
		fmt.Fprintf(&b, "  %s %s\n", c.pal.f(Cyan, "%-18s", r[0]+":"), r[1])
	}
	return b.String()
}

func percent(mod float64) int {
	return int(mod*100 + 0.5)
}
