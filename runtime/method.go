package cruntime

// callMethod runs a class method against the named instance. The body sees a
// scope built from copies: the global integer and boolean tables, positional
// arguments bound over them (extra arguments are dropped), and any instance
// fields the arguments did not shadow. Objects are copied wholesale so dotted
// writes inside the body stay local until the method finishes.
//
// After the body runs, locals flow back out: class fields return to the
// instance, names that collide with globals update the globals, and the
// object tables are replaced by the method's mutated copy. A jump statement
// inside a method only abandons the remaining statements; an end statement
// prints the ended banner but does not stop the dialogue.
func (vm *VM) callMethod(instance, method string, args []int32) {
	prog := vm.program

	cls, ok := prog.InstanceClass[instance]
	if !ok {
		vm.warnf("Runtime: unknown instance '%s'", instance)
		return
	}
	cdef, ok := prog.Classes[cls]
	if !ok {
		vm.warnf("Runtime: unknown class '%s' for instance '%s'", cls, instance)
		return
	}
	m, ok := cdef.Methods[method]
	if !ok {
		vm.warnf("Runtime: class '%s' has no method '%s'", cls, method)
		return
	}

	locals := make(map[string]int32, len(prog.IntVars)+len(m.Params))
	for k, v := range prog.IntVars {
		locals[k] = v
	}
	localBools := make(map[string]bool, len(prog.BoolVars))
	for k, v := range prog.BoolVars {
		localBools[k] = v
	}
	for i := 0; i < len(args) && i < len(m.Params); i++ {
		locals[m.Params[i]] = args[i]
	}

	objects := make(map[string]map[string]int32, len(prog.Objects))
	for name, fields := range prog.Objects {
		cp := make(map[string]int32, len(fields))
		for k, v := range fields {
			cp[k] = v
		}
		objects[name] = cp
	}
	if _, ok := objects[instance]; !ok {
		fields := make(map[string]int32, len(cdef.Fields))
		for k, v := range cdef.Fields {
			fields[k] = v
		}
		objects[instance] = fields
	}

	for k, v := range objects[instance] {
		if _, shadowed := locals[k]; !shadowed {
			locals[k] = v
		}
	}

	env := &Env{
		IntVars:    locals,
		BoolVars:   localBools,
		StringVars: prog.StringVars,
		Objects:    objects,
	}
	vm.execActions(m.Actions, env, instance)

	if tgt, ok := prog.Objects[instance]; ok {
		for f := range cdef.Fields {
			if v, ok := locals[f]; ok {
				tgt[f] = v
			}
		}
	}
	for k := range prog.IntVars {
		if v, ok := locals[k]; ok {
			prog.IntVars[k] = v
		}
	}
	for k := range prog.BoolVars {
		if v, ok := localBools[k]; ok {
			prog.BoolVars[k] = v
		}
	}
	prog.Objects = objects
}
