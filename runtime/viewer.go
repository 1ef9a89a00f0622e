package cruntime

// DisplayFunc shows a picture by path and reports whether it handled it.
type DisplayFunc func(path string) bool

// SetDisplay installs the picture viewer used by display statements.
// Without one, display statements are reported and skipped.
func (vm *VM) SetDisplay(display DisplayFunc) {
	vm.display = display
}

func (vm *VM) showPicture(path string) {
	if vm.display != nil && vm.display(path) {
		return
	}
	vm.warnf("No viewer available for picture: %s", path)
}
