package debian

import "strings"

// UpstreamVersion strips the Debian parts of a package version: the epoch
// ("1:"), the Debian revision after the last hyphen, and any repack or
// backport suffix starting at the first "~" or "+".
//
//	UpstreamVersion("1:2.2.4-3")        // "2.2.4"
//	UpstreamVersion("1.13.10+dfsg-2")   // "1.13.10"
//	UpstreamVersion("6.0.0~rc1-1")      // "6.0.0"
func UpstreamVersion(v string) string {
	v = strings.TrimSpace(v)
	if i := strings.Index(v, ":"); i >= 0 {
		v = v[i+1:]
	}
	if i := strings.LastIndex(v, "-"); i >= 0 {
		v = v[:i]
	}
	if i := strings.IndexAny(v, "~+"); i >= 0 {
		v = v[:i]
	}
	return v
}
