package route

import (
	"strings"

	"github.com/toba/osm-router/element"
)

// allowed reports whether tags permit travel with the access tags of a
// mode. The last present tag of access decides, no and private deny.
func allowed(tags element.Tags, access []string) bool {
	ok := true
	for _, key := range access {
		if v, found := tags.Get(key); found {
			ok = v != "no" && v != "private"
		}
	}
	return ok
}

// excepted reports whether the except tag of a restriction names one of
// the access tags.
func excepted(tags element.Tags, access []string) bool {
	except, ok := tags.Get("except")
	if !ok {
		return false
	}
	for _, v := range strings.Split(except, ";") {
		v = strings.TrimSpace(v)
		for _, a := range access {
			if v == a {
				return true
			}
		}
	}
	return false
}
