// Package serialport connects the driver to an OpenLog on a serial device.
//
// Open takes an exclusive lock file for the device before opening it, so two
// processes never share the half-duplex link. The returned Port implements
// protocol.Transport and offers the DTR or RTS line as the reset pin:
//
//	port, err := serialport.Open("/dev/ttyUSB0", serialport.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	drv := openlog.New(port, openlog.WithResetPin(port.ResetLine()))
package serialport
