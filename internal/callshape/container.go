package callshape

import (
	"strings"

	"github.com/termfx/hlebhint/core"
)

const (
	referenceNamespace = `Hleb\Reference\`
	containerClass     = `\Hleb\Static\Container`
	classSuffix        = "::class"
)

// Service is a container service reachable through get(X::class) or a
// shortcut method on $this
type Service struct {
	Class    string // interface base name, e.g. "Request"
	Shortcut string // shortcut method, e.g. "request"
}

var (
	SettingService = Service{Class: "Setting", Shortcut: "settings"}
	RequestService = Service{Class: "Request", Shortcut: "request"}
)

// Spellings lists the accepted class names passed to get(), without the
// ::class suffix
func (s Service) Spellings() []string {
	c := s.Class
	return []string{
		c,
		c + "Interface",
		`\` + referenceNamespace + c + "Interface",
		`\` + referenceNamespace + `Interface\` + c,
		referenceNamespace + c + "Interface",
		referenceNamespace + `Interface\` + c,
		`\` + referenceNamespace + c,
		referenceNamespace + c,
	}
}

// Matches reports whether call is a method called on the service: any of
// the get(), $this->shortcut() or $this->container->shortcut() receivers.
func (s Service) Matches(call core.Node) bool {
	if call == nil || !call.Kind().IsMethodCall() {
		return false
	}
	receiver := call.FirstChild()
	if receiver == nil || !receiver.Kind().IsMethodCall() {
		return false
	}
	return s.viaGet(receiver) || s.viaShortcut(receiver) || s.viaContainerShortcut(receiver)
}

// viaGet: $this->container->get(X::class) or \Hleb\Static\Container::get(X::class)
func (s Service) viaGet(get core.Node) bool {
	if get.Name() != "get" {
		return false
	}
	args := get.Arguments()
	if len(args) != 1 || args[0].Kind() != core.KindClassConstant {
		return false
	}
	if !s.acceptsClass(args[0]) {
		return false
	}

	holder := get.FirstChild()
	if holder == nil {
		return false
	}
	switch holder.Kind() {
	case core.KindFieldAccess:
		return isContainerField(holder)
	case core.KindClassReference:
		return holder.FQN() == containerClass
	}
	return false
}

// viaShortcut: $this->request()
func (s Service) viaShortcut(m core.Node) bool {
	return m.Kind() == core.KindMethodCall && m.Name() == s.Shortcut && isThis(m.FirstChild())
}

// viaContainerShortcut: $this->container->request()
func (s Service) viaContainerShortcut(m core.Node) bool {
	if m.Kind() != core.KindMethodCall || m.Name() != s.Shortcut {
		return false
	}
	holder := m.FirstChild()
	return holder != nil && holder.Kind() == core.KindFieldAccess && isContainerField(holder)
}

func (s Service) acceptsClass(constant core.Node) bool {
	name := strings.TrimSpace(constant.Text())
	name = strings.TrimSuffix(name, classSuffix)
	for _, spelling := range s.Spellings() {
		if name == spelling {
			return true
		}
	}

	// imported under another alias
	if class := constant.FirstChild(); class != nil && class.Kind() == core.KindClassReference {
		fqn := class.FQN()
		return fqn == `\`+referenceNamespace+s.Class+"Interface" ||
			fqn == `\`+referenceNamespace+`Interface\`+s.Class
	}
	return false
}

func isContainerField(n core.Node) bool {
	return n.Name() == "container" && isThis(n.FirstChild())
}

func isThis(n core.Node) bool {
	return n != nil && n.Kind() == core.KindVariable && n.Text() == "$this"
}
