package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quizboard/quizboard-server-go/internal/game"
	"github.com/quizboard/quizboard-server-go/internal/game/domain"
	"github.com/quizboard/quizboard-server-go/internal/game/events"
	"github.com/quizboard/quizboard-server-go/internal/game/state"
	"github.com/quizboard/quizboard-server-go/internal/repository"
)

const helpText = `commands:
  team <name>               add a team (lobby only)
  start                     start the game
  select <cat> <row> <team> open a clue (1-based category and row)
  right <team> | wrong <team>
  steal <team> yes|no       judge a steal attempt
  close                     close the resolved clue
  queue <event> | trigger <event>
  play | done | ack | resolve
  score <team> <points>     override a score
  board | standings | save | setup | help | quit
events: double_points, hard_reset, reverse_question, score_steal`

// command is one parsed console line. Exactly one of action and local is set.
type command struct {
	action game.Action
	local  string
}

var errEmptyLine = errors.New("empty line")

func parseTeam(arg string) (uint32, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad team id %q", arg)
	}
	return uint32(id), nil
}

func parseIndex(arg, what string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("bad %s %q", what, arg)
	}
	return n - 1, nil
}

func wantArgs(name string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s takes %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

// parseCommand maps a console line onto an engine action or a local command.
func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, errEmptyLine
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	noArgs := map[string]game.Action{
		"start":   game.StartGame{},
		"close":   game.CloseClue{},
		"play":    game.PlayEventAnimation{},
		"done":    game.FinishEventAnimation{},
		"ack":     game.AcknowledgeEvent{},
		"resolve": game.ResolveEvent{},
		"setup":   game.ReturnToSetup{},
	}
	if action, ok := noArgs[name]; ok {
		if err := wantArgs(name, args, 0); err != nil {
			return command{}, err
		}
		return command{action: action}, nil
	}

	switch name {
	case "board", "standings", "save", "help", "quit", "exit":
		if name == "exit" {
			name = "quit"
		}
		return command{local: name}, nil

	case "team":
		if len(args) == 0 {
			return command{}, errors.New("team needs a name")
		}
		return command{action: game.AddTeam{Name: strings.Join(args, " ")}}, nil

	case "select":
		if err := wantArgs(name, args, 3); err != nil {
			return command{}, err
		}
		cat, err := parseIndex(args[0], "category")
		if err != nil {
			return command{}, err
		}
		row, err := parseIndex(args[1], "row")
		if err != nil {
			return command{}, err
		}
		team, err := parseTeam(args[2])
		if err != nil {
			return command{}, err
		}
		return command{action: game.SelectClue{Clue: domain.Coord{Category: cat, Row: row}, Team: team}}, nil

	case "right", "wrong":
		if err := wantArgs(name, args, 1); err != nil {
			return command{}, err
		}
		team, err := parseTeam(args[0])
		if err != nil {
			return command{}, err
		}
		if name == "right" {
			return command{action: game.AnswerCorrect{Team: team}}, nil
		}
		return command{action: game.AnswerIncorrect{Team: team}}, nil

	case "steal":
		if err := wantArgs(name, args, 2); err != nil {
			return command{}, err
		}
		team, err := parseTeam(args[0])
		if err != nil {
			return command{}, err
		}
		switch strings.ToLower(args[1]) {
		case "yes", "y", "right":
			return command{action: game.StealAttempt{Team: team, Correct: true}}, nil
		case "no", "n", "wrong":
			return command{action: game.StealAttempt{Team: team, Correct: false}}, nil
		}
		return command{}, fmt.Errorf("steal verdict must be yes or no, got %q", args[1])

	case "queue", "trigger":
		if err := wantArgs(name, args, 1); err != nil {
			return command{}, err
		}
		kind, err := events.ParseKind(strings.ToLower(args[0]))
		if err != nil {
			return command{}, err
		}
		if name == "queue" {
			return command{action: game.QueueEvent{Event: kind}}, nil
		}
		return command{action: game.TriggerEvent{Event: kind}}, nil

	case "score":
		if err := wantArgs(name, args, 2); err != nil {
			return command{}, err
		}
		team, err := parseTeam(args[0])
		if err != nil {
			return command{}, err
		}
		score, err := strconv.Atoi(args[1])
		if err != nil {
			return command{}, fmt.Errorf("bad score %q", args[1])
		}
		return command{action: game.AdjustScore{Team: team, Score: score}}, nil
	}
	return command{}, fmt.Errorf("unknown command %q (try help)", name)
}

// console drives one engine from line input.
type console struct {
	engine    *game.Engine
	repo      repository.SnapshotRepository
	out       io.Writer
	logger    *zap.Logger
	animation time.Duration
	autosave  bool
}

func newConsole(engine *game.Engine, repo repository.SnapshotRepository, out io.Writer, logger *zap.Logger) *console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &console{
		engine:    engine,
		repo:      repo,
		out:       out,
		logger:    logger,
		animation: events.DefaultAnimationDuration,
		autosave:  repo != nil,
	}
}

// attach prints every effect the engine publishes on bus.
func (c *console) attach(bus *game.EffectBus) {
	bus.Subscribe(func(e game.Effect) {
		fmt.Fprintf(c.out, "  * %s\n", c.describeEffect(e))
	})
}

// Run reads commands until quit, EOF or ctx is done.
func (c *console) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	c.prompt()
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		quit, err := c.exec(ctx, scanner.Text())
		if err != nil && !errors.Is(err, errEmptyLine) {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
		c.prompt()
	}
	return scanner.Err()
}

func (c *console) prompt() {
	fmt.Fprintf(c.out, "[%s] > ", describePhase(c.engine.Phase()))
}

// exec runs one line and reports whether the console should stop.
func (c *console) exec(ctx context.Context, line string) (bool, error) {
	cmd, err := parseCommand(line)
	if err != nil {
		return false, err
	}

	switch cmd.local {
	case "quit":
		return true, c.save(ctx)
	case "help":
		fmt.Fprintln(c.out, helpText)
		return false, nil
	case "board":
		c.printBoard()
		return false, nil
	case "standings":
		c.printStandings()
		return false, nil
	case "save":
		if err := c.save(ctx); err != nil {
			return false, err
		}
		fmt.Fprintf(c.out, "saved game %s\n", c.engine.ID())
		return false, nil
	}

	if _, err := c.engine.Handle(cmd.action); err != nil {
		return false, err
	}
	switch cmd.action.(type) {
	case game.PlayEventAnimation:
		fmt.Fprintf(c.out, "  (announcement plays for %s; type done when finished)\n", c.animation)
	case game.ReturnToSetup:
		c.printStandings()
	}
	if c.autosave {
		if err := c.save(ctx); err != nil {
			c.logger.Warn("autosave failed", zap.String("game_id", c.engine.ID()), zap.Error(err))
		}
	}
	return false, nil
}

func (c *console) save(ctx context.Context) error {
	if c.repo == nil {
		return nil
	}
	return c.repo.Save(ctx, c.engine.ID(), c.engine.Snapshot())
}

func (c *console) teamName(id uint32) string {
	for _, t := range c.engine.Teams() {
		if t.ID == id {
			return t.Name
		}
	}
	return fmt.Sprintf("team %d", id)
}

func (c *console) describeEffect(e game.Effect) string {
	switch e := e.(type) {
	case game.ScoreChanged:
		return fmt.Sprintf("%s %+d", c.teamName(e.Team), e.Delta)
	case game.ScoreAdjusted:
		return fmt.Sprintf("%s set to %d (was %d)", c.teamName(e.Team), e.New, e.Old)
	case game.ClueRevealed:
		return fmt.Sprintf("answer to %s revealed", humanCoord(e.Clue))
	case game.ClueSolved:
		return fmt.Sprintf("clue %s solved", humanCoord(e.Clue))
	case game.Flash:
		return fmt.Sprintf("flash %s", e.Flash)
	case game.EventQueued:
		return fmt.Sprintf("%s queued", e.Event.DisplayName())
	case game.EventTriggered:
		return fmt.Sprintf("%s triggered", e.Event.DisplayName())
	case game.EventAnimation:
		return fmt.Sprintf("%s announcement (%s)", e.Event.DisplayName(), e.Animation)
	case game.ScoreReset:
		return "all scores reset to zero"
	case game.DoublePointsActivated:
		return "double points on the next clue"
	case game.ReverseQuestionActivated:
		return "question and answer swapped"
	case game.ScoreStealApplied:
		return fmt.Sprintf("%s stole %d from %s", e.Steal.ThiefName, e.Steal.Amount, e.Steal.VictimName)
	}
	return string(e.Kind())
}

// humanCoord prints a coordinate the way the host types it.
func humanCoord(c domain.Coord) string {
	return fmt.Sprintf("%d/%d", c.Category+1, c.Row+1)
}

func describePhase(p state.Phase) string {
	switch p := p.(type) {
	case state.Selecting:
		return fmt.Sprintf("selecting: team %d", p.Team)
	case state.Showing:
		return fmt.Sprintf("showing %s: team %d, attempt %d/%d", humanCoord(p.Clue), p.Owner, p.Attempt, p.MaxAttempts)
	case state.Steal:
		return fmt.Sprintf("steal %s: team %d, %d waiting", humanCoord(p.Clue), p.Current, len(p.Queue))
	case state.Resolved:
		return fmt.Sprintf("resolved %s: next team %d", humanCoord(p.Clue), p.NextTeam)
	}
	return p.Kind().String()
}

func (c *console) printBoard() {
	board := c.engine.Board()
	for ci, cat := range board.Categories {
		fmt.Fprintf(c.out, "%d. %-20s", ci+1, cat.Name)
		for _, clue := range cat.Clues {
			if clue.Solved {
				fmt.Fprintf(c.out, " %5s", "--")
				continue
			}
			fmt.Fprintf(c.out, " %5d", clue.Points)
		}
		fmt.Fprintln(c.out)
	}
	if c.engine.BoardCleared() {
		fmt.Fprintln(c.out, "board cleared; type setup to finish")
	}
	if ev := c.engine.Events(); ev.Active != nil {
		fmt.Fprintf(c.out, "active event: %s\n", ev.Active.DisplayName())
	}
}

func (c *console) printStandings() {
	for i, s := range c.engine.Leaderboard() {
		fmt.Fprintf(c.out, "%d. %-20s %6d  (id %d)\n", i+1, s.Name, s.Score, s.TeamID)
	}
}
