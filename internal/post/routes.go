package post

import (
	"fmt"
	"strings"
)

// Named routes, in gin path syntax. Handlers register these patterns and
// templates build links from them through Reverse.
const (
	RouteList   = "post-list"
	RouteDetail = "post-detail"
	RouteCreate = "post-create"
	RouteUpdate = "post-update"
)

var Routes = map[string]string{
	RouteList:   "/posts/",
	RouteDetail: "/posts/:id/",
	RouteCreate: "/posts/create/",
	RouteUpdate: "/posts/:id/update/",
}

// Reverse builds the path of a named route, filling its ":param" segments
// in order from args.
func Reverse(name string, args ...interface{}) (string, error) {
	pattern, ok := Routes[name]
	if !ok {
		return "", fmt.Errorf("unknown route %q", name)
	}
	segs := strings.Split(pattern, "/")
	i := 0
	for n, s := range segs {
		if !strings.HasPrefix(s, ":") {
			continue
		}
		if i >= len(args) {
			return "", fmt.Errorf("route %q: missing value for %s", name, s)
		}
		segs[n] = fmt.Sprint(args[i])
		i++
	}
	if i != len(args) {
		return "", fmt.Errorf("route %q: %d unused arguments", name, len(args)-i)
	}
	return strings.Join(segs, "/"), nil
}

// MustReverse is Reverse for callers with fixed, known-good arguments.
func MustReverse(name string, args ...interface{}) string {
	p, err := Reverse(name, args...)
	if err != nil {
		panic(err)
	}
	return p
}
