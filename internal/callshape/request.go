package callshape

import (
	"github.com/termfx/hlebhint/core"
)

const requestClass = `\Hleb\Static\Request`

// RequestSource is the part of the request a parameter accessor reads
type RequestSource uint8

const (
	RequestRoute RequestSource = iota // dynamic route segment
	RequestGet
	RequestPost
)

var requestMethods = map[string]RequestSource{
	"param": RequestRoute,
	"get":   RequestGet,
	"post":  RequestPost,
}

// MatchRequestParam recognises the single argument of Request::param/get/post,
// the same methods on the request service, and the param() function.
func MatchRequestParam(n core.Node) (RequestSource, bool) {
	shape, ok := Enclosing(n)
	if !ok {
		return 0, false
	}

	if shape.IsFunction("param") {
		if first := shape.Arg(0); first != nil && first.Equal(n) {
			return RequestRoute, true
		}
		return 0, false
	}

	source, ok := requestMethods[shape.Callee]
	if !ok {
		return 0, false
	}
	if len(shape.Args) != 1 || !shape.Args[0].Equal(n) {
		return 0, false
	}
	if shape.IsStatic(requestClass) {
		return source, true
	}
	if shape.Kind == core.KindMethodCall && RequestService.Matches(shape.Call) {
		return source, true
	}
	return 0, false
}
