package vm

import "sync"

var machinePool = sync.Pool{
	New: func() any { return new(Machine) },
}

// GetMachine returns a clean machine from the pool.
func GetMachine() *Machine {
	return machinePool.Get().(*Machine)
}

// PutMachine resets m and returns it to the pool. m must not be used afterwards.
func PutMachine(m *Machine) {
	m.Reset()
	m.Code = nil
	m.Constants = nil
	m.Arena = m.Arena[:0]
	m.Locals = nil
	m.LocalNames = nil
	m.HostRegistry = nil
	m.Stdout = nil
	machinePool.Put(m)
}
