package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// initLogging configures the global logger. Lambda output goes to CloudWatch so it is logged as JSON.
func initLogging(level string, json bool) {

	if json {
		log.SetFormatter(&log.JSONFormatter{
			FieldMap: log.FieldMap{
				log.FieldKeyTime: "timestamp",
				log.FieldKeyMsg:  "message",
			},
		})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetOutput(os.Stdout)

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Unknown log level %s, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

func fatalIfError(err error) {
	if err != nil {
		log.Fatalf("FATAL ERROR: %s", err.Error())
	}
}

//
// end of file
//
