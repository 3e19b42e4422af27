package openlog

// Logger is an optional logging interface that can be provided to the driver.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	drv := openlog.New(port, openlog.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

// Pin drives the peripheral's active-low reset line.
type Pin interface {
	// Set drives the line high (released) or low (reset)
	Set(high bool) error
}

// PinFunc adapts a function to the Pin interface.
//
// Example:
//
//	pin := openlog.PinFunc(func(high bool) error {
//	    return gpio.Write(17, high)
//	})
type PinFunc func(high bool) error

// Set calls f(high).
func (f PinFunc) Set(high bool) error {
	return f(high)
}
