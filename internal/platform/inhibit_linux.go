//go:build linux

package platform

import "github.com/stigoleg/wiggler/internal/util"

// linuxInhibitors lists helper commands in order of preference.
var linuxInhibitors = map[string][]string{
	"systemd-inhibit": {
		"--what=idle:sleep",
		"--who=wiggler",
		"--why=Wiggler is active",
		"--mode=block",
		"sleep", "infinity",
	},
	"gnome-session-inhibit": {
		"--inhibit", "idle:suspend",
		"--reason", "Wiggler is active",
		"sleep", "infinity",
	},
}

// NewInhibitor picks systemd-inhibit, then gnome-session-inhibit.
func NewInhibitor() Inhibitor {
	name, ok := util.FirstCommand("systemd-inhibit", "gnome-session-inhibit")
	if !ok {
		return noopInhibitor{}
	}
	return &commandInhibitor{name: name, args: linuxInhibitors[name]}
}
