package authz

import "strings"

type CommandClass int

const (
	Unprivileged CommandClass = iota
	Privileged
)

func (c CommandClass) String() string {
	if c == Privileged {
		return "privileged"
	}
	return "unprivileged"
}

var defaultPrivileged = []string{
	"pause_toggle",
	"pause_on",
	"pause_off",
	"toggle_gear",
	"set_throttle",
	"toggle_speedbrake",
	"toggle_parking_brake",
	"toggle_flaps",
	"flaps_up",
	"flaps_down",
	"toggle_spoilers",
	"toggle_lights",
}

var defaultPrivilegedPrefixes = []string{
	"autopilot_",
	"set_ap_",
	"save_game",
	"toggle_engine",
}

// Classifier is a static predicate over command type tags. Payload
// contents are never inspected.
type Classifier struct {
	exact    map[string]struct{}
	prefixes []string
}

// NewClassifier returns the built-in classification extended with extra
// exact type tags.
func NewClassifier(extra ...string) *Classifier {
	c := &Classifier{
		exact:    make(map[string]struct{}, len(defaultPrivileged)+len(extra)),
		prefixes: defaultPrivilegedPrefixes,
	}
	for _, t := range defaultPrivileged {
		c.exact[t] = struct{}{}
	}
	for _, t := range extra {
		if t = strings.TrimSpace(t); t != "" {
			c.exact[t] = struct{}{}
		}
	}
	return c
}

func (c *Classifier) Classify(commandType string) CommandClass {
	if _, ok := c.exact[commandType]; ok {
		return Privileged
	}
	for _, p := range c.prefixes {
		if strings.HasPrefix(commandType, p) {
			return Privileged
		}
	}
	return Unprivileged
}
