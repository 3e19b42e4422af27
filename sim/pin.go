package sim

// Pin is the reset line of a Peripheral. It is active low: driving it low
// holds the peripheral in reset and the following rising edge reboots it.
type Pin struct {
	p *Peripheral
}

// ResetPin returns the peripheral's reset line.
func (p *Peripheral) ResetPin() *Pin {
	return &Pin{p: p}
}

// Set drives the reset line.
func (pin *Pin) Set(high bool) error {
	p := pin.p
	p.mu.Lock()
	defer p.mu.Unlock()

	rising := high && !p.resetHigh
	p.resetHigh = high
	if !high {
		// Held in reset: the UART is silent.
		p.out = p.out[:0]
		return nil
	}
	if rising {
		p.boot()
	}
	return nil
}
