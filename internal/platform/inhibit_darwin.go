//go:build darwin

package platform

// NewInhibitor returns a caffeinate-backed inhibitor.
func NewInhibitor() Inhibitor {
	return &commandInhibitor{name: "caffeinate", args: []string{"-d", "-i"}}
}
