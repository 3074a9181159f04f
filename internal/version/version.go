package version

import (
	"fmt"
	"runtime"
)

const (
	// Version is the current version of walkhub
	Version = "0.3.0"

	// ProjectURL is the project homepage
	ProjectURL = "https://github.com/walkhub/walkhub"
)

// UserAgent returns a properly formatted User-Agent string for requests to
// the walks-manager API
func UserAgent() string {
	return fmt.Sprintf("walkhub/%s (%s; %s/%s; +%s)",
		Version,
		runtime.Version(),
		runtime.GOOS,
		runtime.GOARCH,
		ProjectURL,
	)
}

// GetVersion returns the current version
func GetVersion() string {
	return Version
}
