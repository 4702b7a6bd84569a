// SPDX-License-Identifier: Apache-2.0

package config

import "net/url"

// Environment-specific endpoint constants. These encode where the backend
// lives relative to known page hosts; they are configuration data, not
// logic, and are expected to change per deployment site.
const (
	// defaultAPIPort is the port the backend listens on when the page host
	// gives no better hint.
	defaultAPIPort = "5000"

	// internalHost is the fixed address of the on-premises deployment.
	internalHost = "10.1.24.200"

	// internalAPIBase is the backend URL bound to internalHost.
	internalAPIBase = "http://10.1.24.200:5000/api"
)

// loopbackHosts are page hosts treated as local development.
var loopbackHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
}

// Location describes where the hosting page was served from. It is the
// input to API-base detection; a zero Location behaves like an unknown
// remote host.
type Location struct {
	// Scheme is "http" or "https".
	Scheme string

	// Hostname is the page host without port.
	Hostname string

	// Port is the page port, empty when the URL carried none.
	Port string
}

// LocationFromURL extracts a Location from a page URL. Returns the zero
// Location for a nil URL.
func LocationFromURL(u *url.URL) Location {
	if u == nil {
		return Location{}
	}
	return Location{
		Scheme:   u.Scheme,
		Hostname: u.Hostname(),
		Port:     u.Port(),
	}
}

// DetectAPIBase derives an API base URL from the page location. The rules
// form a closed, ordered set; the first match wins:
//
//  1. loopback page host: reuse the page's own scheme and port (or
//     defaultAPIPort when the page carried none) to avoid cross-origin
//     mismatches during local development;
//  2. the known internal host: the hard-coded internal backend URL;
//  3. anything else: same host on defaultAPIPort.
//
// The result is never empty.
func DetectAPIBase(loc Location) string {
	scheme := loc.Scheme
	if scheme == "" {
		scheme = "http"
	}
	host := loc.Hostname
	if host == "" {
		host = "localhost"
	}

	switch {
	case loopbackHosts[host]:
		port := loc.Port
		if port == "" {
			port = defaultAPIPort
		}
		return scheme + "://" + host + ":" + port + "/api"
	case host == internalHost:
		return internalAPIBase
	default:
		return scheme + "://" + host + ":" + defaultAPIPort + "/api"
	}
}
