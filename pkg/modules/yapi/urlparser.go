package yapi

import (
	"net/url"
	"regexp"
)

// interfacePathPattern matches /project/{projectId}/interface/api/{interfaceId}.
// A prefix is allowed so YApi deployments under a sub path still match.
var interfacePathPattern = regexp.MustCompile(`/project/(\d+)/interface/api/(\d+)(?:/|$)`)

// ParseInterfaceURL extracts the server origin, project id and interface id
// from a YApi interface page URL such as
// https://yapi.example.com/project/100/interface/api/12345.
// It returns false when the URL is not absolute or the path does not match.
func ParseInterfaceURL(raw string) (*ParsedInterfaceURL, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, false
	}

	match := interfacePathPattern.FindStringSubmatch(u.Path)
	if match == nil {
		return nil, false
	}

	return &ParsedInterfaceURL{
		BaseURL:     u.Scheme + "://" + u.Host,
		ProjectID:   match[1],
		InterfaceID: match[2],
	}, true
}
