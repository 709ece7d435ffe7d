package pipeline

import (
	"fmt"
	"strings"

	"github.com/sarchlab/oosim/timing/rat"
	"github.com/sarchlab/oosim/timing/rob"
)

// MaxWidth is the widest supported pipeline.
const MaxWidth = 8

// SchedPolicy selects how ready instructions are picked for execution.
type SchedPolicy int

const (
	// SchedInOrder only schedules the oldest unscheduled instruction; if it is
	// not ready, nothing younger is scheduled in that cycle.
	SchedInOrder SchedPolicy = iota
	// SchedOutOfOrder schedules any ready instruction, oldest first.
	SchedOutOfOrder
)

// String returns the config name of the policy.
func (s SchedPolicy) String() string {
	switch s {
	case SchedInOrder:
		return "in-order"
	case SchedOutOfOrder:
		return "out-of-order"
	default:
		return fmt.Sprintf("SchedPolicy(%d)", int(s))
	}
}

// ParseSchedPolicy accepts "in-order"/"inorder"/"0" and
// "out-of-order"/"ooo"/"1".
func ParseSchedPolicy(s string) (SchedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in-order", "inorder", "0":
		return SchedInOrder, nil
	case "out-of-order", "outoforder", "ooo", "1":
		return SchedOutOfOrder, nil
	default:
		return SchedInOrder, fmt.Errorf("unknown scheduling policy %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s SchedPolicy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SchedPolicy) UnmarshalText(text []byte) error {
	p, err := ParseSchedPolicy(string(text))
	if err != nil {
		return err
	}
	*s = p
	return nil
}

// Config holds the structural parameters of the pipeline.
type Config struct {
	// Width is the number of lanes per stage and the commit bandwidth.
	Width int `json:"pipe_width"`

	// SchedPolicy selects in-order or out-of-order scheduling.
	SchedPolicy SchedPolicy `json:"sched_policy"`

	// NumROBEntries is the reorder buffer capacity.
	NumROBEntries int `json:"rob_entries"`

	// NumEXEQEntries is the execution queue capacity. Zero sizes the queue to
	// NumROBEntries, which can never overflow. A smaller queue makes Tick
	// fail with exeq.ErrFull once more instructions execute at once than it
	// holds.
	NumEXEQEntries int `json:"exeq_entries"`

	// NumArchRegs is the number of architectural registers renamed by the RAT.
	NumArchRegs int `json:"arch_regs"`

	// Exceptions enables the precise exception model.
	Exceptions bool `json:"exceptions"`
}

// DefaultConfig returns a 1-wide in-order scheduled pipeline with exceptions
// disabled.
func DefaultConfig() Config {
	return Config{
		Width:         1,
		SchedPolicy:   SchedInOrder,
		NumROBEntries: rob.DefaultNumEntries,
		NumArchRegs:   rat.DefaultNumRegs,
	}
}

// EXEQEntries returns the effective execution queue capacity.
func (c Config) EXEQEntries() int {
	if c.NumEXEQEntries == 0 {
		return c.NumROBEntries
	}
	return c.NumEXEQEntries
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Width < 1 || c.Width > MaxWidth {
		return fmt.Errorf("pipe_width must be in [1, %d], got %d", MaxWidth, c.Width)
	}
	if c.SchedPolicy != SchedInOrder && c.SchedPolicy != SchedOutOfOrder {
		return fmt.Errorf("invalid sched_policy %d", int(c.SchedPolicy))
	}
	if c.NumROBEntries < 1 || c.NumROBEntries > rob.MaxEntries {
		return fmt.Errorf("rob_entries must be in [1, %d], got %d", rob.MaxEntries, c.NumROBEntries)
	}
	if c.NumEXEQEntries != 0 && c.NumEXEQEntries < c.Width {
		return fmt.Errorf("exeq_entries (%d) must be 0 or >= pipe_width (%d)", c.NumEXEQEntries, c.Width)
	}
	if c.NumArchRegs < 1 {
		return fmt.Errorf("arch_regs must be > 0")
	}
	return nil
}
