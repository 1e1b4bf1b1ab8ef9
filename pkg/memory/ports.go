package memory

// Ports is a flat 256-entry I/O space. Out stores the value so a later
// In on the same port reads it back; every Out is also logged.
type Ports struct {
	data [256]uint8
	log  []PortWrite
}

// PortWrite records one OUT.
type PortWrite struct {
	Port, Value uint8
}

func (p *Ports) In(port uint8) uint8 {
	return p.data[port]
}

func (p *Ports) Out(port, v uint8) error {
	p.data[port] = v
	p.log = append(p.log, PortWrite{port, v})
	return nil
}

// Set presets the value a port reads.
func (p *Ports) Set(port, v uint8) {
	p.data[port] = v
}

// Log returns the OUT writes since the last Reset.
func (p *Ports) Log() []PortWrite {
	return p.log
}

// Reset zeroes every port and clears the log.
func (p *Ports) Reset() {
	clear(p.data[:])
	p.log = nil
}
