package main

// set at build time with -ldflags "-X main.buildVersion=..."
var buildVersion = "unknown"

func Version() string {
	return buildVersion
}

//
// end of file
//
