// Package offload copies log files from an OpenLog card to another store.
//
// # Overview
//
// An Offloader lists a card directory through the driver, reads each
// selected file completely and hands it to a Sink. With WithDelete the file
// is removed from the card once the sink has it. Sinks exist for a local
// directory, an SFTP server and an FTP server.
//
// # Basic Usage
//
//	sink, err := offload.NewSink("sftp", "/srv/openlog", &offload.Auth{
//	    Host: "backup.local", User: "logger", Password: pw,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sink.Close()
//
//	off := offload.New(drv, sink,
//	    offload.WithDir("LOGS"),
//	    offload.WithPattern(regexp.MustCompile(`^LOG\d+\.TXT$`)),
//	    offload.WithDelete(true),
//	)
//	res, err := off.Run(ctx)
//
// # Scheduling
//
// Scheduler runs offloads on cron schedules:
//
//	sched := offload.NewScheduler(logger)
//	if err := sched.Add("*/30 * * * *", off); err != nil {
//	    log.Fatal(err)
//	}
//	sched.Start()
//	defer sched.Stop()
package offload
