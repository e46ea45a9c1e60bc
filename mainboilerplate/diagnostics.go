package mainboilerplate

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

// Version and BuildDate are populated at build time, using:
//
//	-ldflags "-X go.seatdraw.dev/core/mainboilerplate.Version=... -X go.seatdraw.dev/core/mainboilerplate.BuildDate=..."
var (
	Version   = "development"
	BuildDate = "unknown"
)

// Must logs a fatal error and exits if |err| is non-nil, supplying |msg| and
// |extra| key/value pairs as the message and fields of the log event.
func Must(err error, msg string, extra ...interface{}) {
	if err == nil {
		return
	}
	var f = log.Fields{"err": err}
	for i := 0; i+1 < len(extra); i += 2 {
		f[fmt.Sprintf("%v", extra[i])] = extra[i+1]
	}
	log.WithFields(f).Fatal(msg)
}

// PrintVersion writes the Version and BuildDate to stderr.
func PrintVersion() {
	fmt.Fprintf(os.Stderr, "\nVersion %s, built at %s.\n", Version, BuildDate)
}
