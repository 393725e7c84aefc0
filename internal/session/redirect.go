package session

import (
	"net/url"
	"strings"
)

// AllowList holds the hostnames a visitor may be redirected to after login.
type AllowList map[string]struct{}

func NewAllowList(hosts []string) AllowList {
	a := make(AllowList, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			a[h] = struct{}{}
		}
	}
	return a
}

func (a AllowList) Allows(hostname string) bool {
	_, ok := a[strings.ToLower(hostname)]
	return ok
}

// Normalize returns target when it is a same-origin absolute path or an
// http(s) URL on an allowed host, and "/" otherwise.
func (a AllowList) Normalize(target string) string {
	// Browsers strip tab, CR and LF while parsing, so "/\t/host" would
	// become protocol-relative.
	if strings.IndexFunc(target, isControl) >= 0 {
		return "/"
	}

	if isSafePath(target) {
		return target
	}

	u, err := url.Parse(target)
	if err != nil {
		return "/"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "/"
	}
	if u.User != nil || !a.Allows(u.Hostname()) {
		return "/"
	}

	return target
}

// isSafePath rejects protocol-relative forms, including the backslash
// variant browsers treat as "//".
func isSafePath(target string) bool {
	if !strings.HasPrefix(target, "/") {
		return false
	}
	return !strings.HasPrefix(target, "//") && !strings.HasPrefix(target, `/\`)
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}

// withQueryParam appends key=value to an already normalized target.
func withQueryParam(target, key, value string) string {
	u, err := url.Parse(target)
	if err != nil {
		return "/?" + url.Values{key: {value}}.Encode()
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
