//go:build !darwin && !linux && !windows

package platform

// NewInhibitor returns a no-op inhibitor on platforms without support.
func NewInhibitor() Inhibitor {
	return noopInhibitor{}
}
