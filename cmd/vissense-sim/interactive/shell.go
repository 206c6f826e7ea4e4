// Package interactive provides the interactive command-line interface
// for the VisSense simulator.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/vissense/vissense-go/pkg/monitor"
	"github.com/vissense/vissense-go/pkg/scenario"
)

// ErrUsage is returned by ParseCommand when a command has the wrong arguments.
var ErrUsage = errors.New("usage")

// usages maps each scenario action to its command syntax.
var usages = map[string]string{
	scenario.ActionMove:       "move <element> <top> <left>",
	scenario.ActionResize:     "resize <element> <width> <height>",
	scenario.ActionDisplay:    "display <element> <value>",
	scenario.ActionVisibility: "visibility <element> <value>",
	scenario.ActionRemove:     "remove <element>",
	scenario.ActionScroll:     "scroll <x> <y>",
	scenario.ActionScrollBy:   "scroll_by <dx> <dy>",
	scenario.ActionViewport:   "viewport <width> <height>",
	scenario.ActionPageHidden: "page_hidden <true|false>",
	scenario.ActionDispatch:   "dispatch <resize|scroll|touchmove>",
	scenario.ActionUpdate:     "update",
	scenario.ActionStart:      "start",
	scenario.ActionStartAsync: "start_async",
	scenario.ActionStop:       "stop",
	scenario.ActionAdvance:    "advance <duration>",
}

// ParseCommand turns one shell line into a scenario step.
func ParseCommand(line string) (*scenario.Step, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrUsage)
	}
	action := strings.ToLower(parts[0])
	args := parts[1:]

	usage, ok := usages[action]
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", parts[0])
	}
	want := len(strings.Fields(usage)) - 1
	if len(args) != want {
		return nil, fmt.Errorf("%w: %s", ErrUsage, usage)
	}

	step := &scenario.Step{Action: action}
	var err error
	switch action {
	case scenario.ActionMove:
		step.Element = args[0]
		step.Top, step.Left, err = parsePair(args[1], args[2])
	case scenario.ActionResize:
		step.Element = args[0]
		step.Width, step.Height, err = parsePair(args[1], args[2])
	case scenario.ActionDisplay, scenario.ActionVisibility:
		step.Element = args[0]
		step.Value = args[1]
	case scenario.ActionRemove:
		step.Element = args[0]
	case scenario.ActionScroll, scenario.ActionScrollBy:
		step.X, step.Y, err = parsePair(args[0], args[1])
	case scenario.ActionViewport:
		step.Width, step.Height, err = parsePair(args[0], args[1])
	case scenario.ActionPageHidden:
		step.Hidden, err = strconv.ParseBool(args[0])
	case scenario.ActionDispatch:
		step.Value = args[0]
	case scenario.ActionAdvance:
		step.Duration = args[0]
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUsage, usage, err)
	}

	if err := step.Validate(); err != nil {
		return nil, err
	}
	return step, nil
}

func parsePair(a, b string) (float64, float64, error) {
	x, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.ParseFloat(b, 64)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// Shell handles interactive mode for vissense-sim.
type Shell struct {
	session *scenario.Session
	rl      *readline.Instance
}

// New creates a new interactive shell. The session is set with SetSession
// before Run.
func New() (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "vissense> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Shell{rl: rl}, nil
}

// SetSession sets the session the shell drives.
func (s *Shell) SetSession(session *scenario.Session) {
	s.session = session
}

// Observe prints every event of m as it is published. It is meant to be
// used as a scenario observer.
func (s *Shell) Observe(m *monitor.Monitor) {
	m.On(monitor.TopicAny, s.handleEvent)
}

func (s *Shell) handleEvent(ev monitor.Event) {
	if ev.State == nil {
		fmt.Fprintf(s.rl.Stdout(), "  [EVENT] %s\n", ev.Topic)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "  [EVENT] %-17s %s %.1f%%\n", ev.Topic, ev.State.Name(), ev.Percentage*100)
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (s *Shell) Stderr() io.Writer {
	return s.rl.Stderr()
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		cmd := strings.ToLower(strings.Fields(input)[0])
		switch cmd {
		case "help", "?":
			s.printHelp()

		case "state", "s":
			s.cmdState()

		case "elements", "e":
			s.cmdElements()

		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			s.cmdStep(input)
		}
	}
}

func (s *Shell) cmdStep(input string) {
	step, err := ParseCommand(input)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v (type 'help' for commands)\n", err)
		return
	}

	result := s.session.Apply(step)
	if result.Error != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", result.Error)
		return
	}
	if len(result.Events) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "  (no events)")
	}
	s.cmdState()
}

func (s *Shell) cmdState() {
	m := s.session.Monitor()
	state := m.State()
	if state == nil {
		fmt.Fprintf(s.rl.Stdout(), "State: (none)  started=%v\n", m.Started())
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "State: %s %.1f%%  started=%v\n", state.Name(), state.Percentage*100, m.Started())
}

func (s *Shell) cmdElements() {
	w := s.session.Window()
	vp := w.Viewport()
	fmt.Fprintf(s.rl.Stdout(), "Viewport: %gx%g\n", vp.Width, vp.Height)
	for _, el := range s.session.Scenario().Elements {
		node := w.Element(el.ID)
		if node == nil {
			fmt.Fprintf(s.rl.Stdout(), "  %-12s (removed)\n", el.ID)
			continue
		}
		r := w.BoundingRect(node)
		fmt.Fprintf(s.rl.Stdout(), "  %-12s top=%g left=%g width=%g height=%g visible=%v\n",
			el.ID, r.Top, r.Left, r.Width, r.Height, w.IsStyledVisible(node))
	}
}

func (s *Shell) printHelp() {
	out := s.rl.Stdout()
	fmt.Fprintln(out, `
VisSense Simulator Commands:
  Layout:
    move <element> <top> <left>       - Move an element
    resize <element> <width> <height> - Resize an element
    display <element> <value>         - Set the display style (e.g. none)
    visibility <element> <value>      - Set the visibility style (e.g. hidden)
    remove <element>                  - Remove an element
    elements                          - Show element geometry

  Window:
    scroll <x> <y>                    - Scroll to a position
    scroll_by <dx> <dy>               - Scroll by an offset
    viewport <width> <height>         - Resize the viewport
    page_hidden <true|false>          - Change page visibility
    dispatch <event>                  - Dispatch resize, scroll or touchmove

  Monitor:
    update                            - Sample the element now
    start                             - Start the monitor
    start_async                       - Start on the next tick
    stop                              - Stop the monitor
    state                             - Show the current state
    advance <duration>                - Advance the mock clock (-mock-clock)

  Other:
    help                              - Show this help
    quit                              - Exit`)
}
