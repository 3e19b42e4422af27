// Package config loads the TOML configuration of an OpenLog host.
//
// Example file:
//
//	[port]
//	path = "/dev/ttyUSB0"
//	baud = 9600
//	reset_line = "dtr"
//
//	[link]
//	reply_timeout = "10s"
//	read_chunk_size = 64
//
//	[offload]
//	schedule = "0 * * * *"
//	pattern = '^LOG\d+\.TXT$'
//	sink = "local"
//	target = "/var/lib/openlog"
//
// Keys left out keep the values of Default. Unknown keys are an error.
package config
