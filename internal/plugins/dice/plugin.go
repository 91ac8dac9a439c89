// Package dice rolls dice in standard dice notation, e.g. "2d6+d20+3".
package dice

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"github.com/tbourn/go-community-bot/internal/dispatch"
)

// MsgInvalidRoll answers malformed expressions.
const MsgInvalidRoll = "Invalid roll!"

const (
	// Past this many terms or dice per term only the total is shown.
	detailLimit = 20
	// maxDice bounds the dice rolled by one expression.
	maxDice = 1000
	// maxValue bounds the sides of a die and every constant term, which
	// keeps the total of any expression far from int overflow.
	maxValue = 1_000_000
)

var (
	dicePattern   = regexp.MustCompile(`^([0-9]*)d([0-9]+)$`)
	numberPattern = regexp.MustCompile(`^[0-9]+$`)
	spaces        = regexp.MustCompile(`\s+`)
)

type display int

const (
	showDice  display = iota // one term: every die
	showRolls                // several terms: one sum per term
	showTotal                // too many to list
)

// Plugin is the dice module.
type Plugin struct {
	// intn returns a value in [0, n).
	intn func(n int) int
}

// New returns the module using the process-wide random source.
func New() *Plugin { return &Plugin{intn: rand.IntN} }

// NewWithSource returns the module drawing from intn, for deterministic use.
func NewWithSource(intn func(n int) int) *Plugin { return &Plugin{intn: intn} }

// Name implements dispatch.Module.
func (p *Plugin) Name() string { return "dice" }

// Register implements dispatch.Module.
func (p *Plugin) Register(d *dispatch.Dispatcher) error {
	return d.AddCommand(&dispatch.Command{
		Name: "roll",
		Help: "Roll a variable amount of dice, commonly used in tabletop RPG games.",
		Run:  p.roll,
	})
}

func (p *Plugin) roll(ctx context.Context, inv *dispatch.Invocation) error {
	if strings.TrimSpace(inv.Args) == "" {
		return dispatch.MissingArgument("roll")
	}
	res, ok := p.Roll(inv.Args)
	if !ok {
		return inv.Reply(ctx, MsgInvalidRoll)
	}
	return inv.Reply(ctx, res.Format(inv.Args))
}

// Result is an evaluated expression.
type Result struct {
	mode   display
	Values []int // per die or per term, depending on the expression
	Total  int
}

// Roll evaluates expr. ok is false when expr is malformed or too large.
func (p *Plugin) Roll(expr string) (res Result, ok bool) {
	terms := strings.Split(spaces.ReplaceAllString(expr, ""), "+")
	switch {
	case len(terms) > detailLimit:
		res.mode = showTotal
	case len(terms) > 1:
		res.mode = showRolls
	}

	rolled := 0
	for _, term := range terms {
		if term == "" {
			continue
		}
		if numberPattern.MatchString(term) {
			n, err := strconv.Atoi(term)
			if err != nil || n > maxValue {
				return Result{}, false
			}
			res.Total += n
			continue
		}

		m := dicePattern.FindStringSubmatch(term)
		if m == nil {
			return Result{}, false
		}
		count := 1
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return Result{}, false
			}
			count = n
		}
		sides, err := strconv.Atoi(m[2])
		if err != nil || sides < 1 || sides > maxValue {
			return Result{}, false
		}
		if count > maxDice-rolled {
			return Result{}, false
		}
		rolled += count
		if count > detailLimit {
			res.mode = showTotal
		}

		sum := 0
		for i := 0; i < count; i++ {
			v := p.intn(sides) + 1
			if res.mode == showDice {
				res.Values = append(res.Values, v)
			}
			sum += v
		}
		if res.mode == showRolls {
			res.Values = append(res.Values, sum)
		}
		res.Total += sum
	}
	return res, true
}

// Format renders the result for the expression it was rolled from.
func (r Result) Format(expr string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rolling %s\n", strings.TrimSpace(expr))
	if r.mode != showTotal {
		label := "Dice"
		if r.mode == showRolls {
			label = "Roll"
		}
		for i, v := range r.Values {
			fmt.Fprintf(&b, "%s %d: %d\n", label, i+1, v)
		}
	}
	fmt.Fprintf(&b, "Full value: %d", r.Total)
	return b.String()
}
