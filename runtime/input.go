package cruntime

import "errors"

// ErrNoInput reports that the dialogue asked for input with nothing queued
// and no provider attached.
var ErrNoInput = errors.New("input requested but no provider is set")

// InputRequest describes one pending read. The prompt has already been
// emitted as output when the provider is called.
type InputRequest struct {
	Prompt string
}

// SetInputProvider installs the blocking read used whenever the queue is
// empty. Frontends bridge this to their own event loop.
func (vm *VM) SetInputProvider(provider func(InputRequest) (string, error)) {
	vm.inputProvider = provider
}

// EnqueueInput appends canned answers consumed before the provider is asked.
// Tests and scripted playthroughs feed choices this way.
func (vm *VM) EnqueueInput(values ...string) {
	vm.inputQueue = append(vm.inputQueue, values...)
}

func (vm *VM) resolveInput(req InputRequest) (string, error) {
	if len(vm.inputQueue) > 0 {
		v := vm.inputQueue[0]
		vm.inputQueue = vm.inputQueue[1:]
		return v, nil
	}
	if vm.inputProvider != nil {
		return vm.inputProvider(req)
	}
	return "", ErrNoInput
}
