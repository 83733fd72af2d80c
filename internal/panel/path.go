package panel

import "strings"

// Path addresses a node of a rendered report by the keys and indices walked
// from the document root. The first segment is the panel name.
type Path []string

// Child returns p extended by segs. p is not modified.
func (p Path) Child(segs ...string) Path {
	out := make(Path, 0, len(p)+len(segs))
	out = append(out, p...)
	return append(out, segs...)
}

// Parent returns p without its last segment.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// Last returns the final segment, or "" for the root.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

var (
	pathEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	pathUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

// String renders p as a JSON pointer, e.g. "/Summary/config~1lr".
func (p Path) String() string {
	var sb strings.Builder
	for _, seg := range p {
		sb.WriteByte('/')
		sb.WriteString(pathEscaper.Replace(seg))
	}
	return sb.String()
}

// ParsePath is the inverse of Path.String.
func ParsePath(s string) Path {
	if s == "" || s == "/" {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(s, "/"), "/")
	out := make(Path, len(parts))
	for i, part := range parts {
		out[i] = pathUnescaper.Replace(part)
	}
	return out
}

// within reports whether key addresses prefix itself or a node below it.
func within(key, prefix string) bool {
	return key == prefix || strings.HasPrefix(key, prefix+"/")
}
