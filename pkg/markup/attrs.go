package markup

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Attr is a single attribute passed to Create.
type Attr struct {
	Key   string
	Value any
}

// Attrs is an attribute map. Create applies its entries in sorted key order.
type Attrs map[string]any

// Action binds a client event to a server-side handler id.
type Action struct {
	Event     string
	HandlerID string
}

// Attribute returns an Attr for Create.
func Attribute(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Class returns a class Attr. Each argument may hold several
// space-separated names.
func Class(names ...string) Attr {
	return Attr{Key: "class", Value: strings.Join(names, " ")}
}

// ID returns an id Attr.
func ID(id string) Attr {
	return Attr{Key: "id", Value: id}
}

// Href returns an href Attr. The URL is validated when applied.
func Href(url string) Attr {
	return Attr{Key: "href", Value: url}
}

// Style returns a style Attr. The style is validated when applied.
func Style(raw string) Attr {
	return Attr{Key: "style", Value: raw}
}

// On returns an Action for Create.
func On(event, handlerID string) Action {
	return Action{Event: event, HandlerID: handlerID}
}

// sortedKeys returns the keys of m in sorted order.
func (a Attrs) sortedKeys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// attrList is an insertion-ordered attribute map. Re-setting a key keeps
// its original position.
type attrList struct {
	keys []string
	vals map[string]any
}

func (l *attrList) set(key string, value any) {
	if l.vals == nil {
		l.vals = make(map[string]any)
	}
	if _, ok := l.vals[key]; !ok {
		l.keys = append(l.keys, key)
	}
	l.vals[key] = value
}

func (l *attrList) get(key string) (any, bool) {
	v, ok := l.vals[key]
	return v, ok
}

func (l *attrList) remove(key string) {
	if _, ok := l.vals[key]; !ok {
		return
	}
	delete(l.vals, key)
	for i, k := range l.keys {
		if k == key {
			l.keys = append(l.keys[:i], l.keys[i+1:]...)
			break
		}
	}
}

// classList is an ordered set of class names.
type classList struct {
	names []string
	seen  map[string]struct{}
}

func (l *classList) add(name string) {
	if l.seen == nil {
		l.seen = make(map[string]struct{})
	}
	if _, ok := l.seen[name]; ok {
		return
	}
	l.seen[name] = struct{}{}
	l.names = append(l.names, name)
}

// attrValue normalizes an attribute value to a string or bool.
func attrValue(value any) any {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
