package core

// FileReference points at a server-hosted resource. Path is relative to the
// serving origin; Filename is the basename including its extension.
type FileReference struct {
	Path     string
	Filename string
}

// IsFileReference reports whether v is a mapping holding both "path" and
// "filename". Other keys are allowed.
func IsFileReference(v *Value) bool {
	return v.IsMap() && v.Has("path") && v.Has("filename")
}

// AsFileReference extracts the reference held by v.
func AsFileReference(v *Value) (FileReference, bool) {
	if !IsFileReference(v) {
		return FileReference{}, false
	}
	path, _ := v.Get("path")
	name, _ := v.Get("filename")
	return FileReference{Path: scalarText(path), Filename: scalarText(name)}, true
}

func scalarText(v *Value) string {
	if v.Kind() == KindString {
		return v.Text()
	}
	return v.String()
}
