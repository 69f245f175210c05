package ontology

import (
	"net/url"
	"regexp"
	"strings"
)

// The code part is any non-space run, so citations such as
// Wikipedia:Heart_(organ) are kept; "//" after the colon is a URL.
var termPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.\-]*:[^\s/][^\s]*$`)

// IsWellFormedTerm reports whether text is a PREFIX:CODE identifier. When
// namespaces is non-empty the prefix must also be one of them. URLs, including
// the OBO "url:http\://" form, are never identifiers.
func IsWellFormedTerm(text string, namespaces []string) bool {
	if _, isURL := looksLikeURL(text); isURL {
		return false
	}
	if !termPattern.MatchString(text) {
		return false
	}
	if len(namespaces) == 0 {
		return true
	}
	return containsString(namespaces, Prefix(text))
}

// looksLikeURL accepts http(s)/ftp URLs, including the OBO "url:http\://"
// escaped form.
func looksLikeURL(text string) (string, bool) {
	s := strings.TrimPrefix(text, "url:")
	s = strings.ReplaceAll(s, `\:`, ":")
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", false
	}
	switch u.Scheme {
	case "http", "https", "ftp":
		return s, true
	}
	return "", false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
