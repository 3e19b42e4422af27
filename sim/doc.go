// Package sim provides an in-memory OpenLog for tests and demonstrations.
//
// A Peripheral parses the command lines it receives and answers the way
// the firmware shell does, including echo, the embedded-mode trailer, the
// write and append streaming modes and the "-1" answer of size for a
// missing file. Clock makes every timeout elapse without real waiting.
//
//	dev := sim.New()
//	dev.AddFile("LOG00001.TXT", []byte("hello"))
//	drv := openlog.New(dev,
//	    openlog.WithClock(sim.NewClock()),
//	    openlog.WithResetPin(dev.ResetPin()),
//	)
//
// Faults can be injected per command line with DropReplies, FailReplies
// and Garble.
package sim
