package panel

import (
	"net/url"
	"strings"

	"github.com/leapstack-labs/runlens/pkg/core"
)

var extensionClasses = []struct {
	class FileClass
	exts  []string
}{
	{FileImage, []string{"jpg", "jpeg", "png", "gif"}},
	{FileAudio, []string{"mp3", "wav", "ogg"}},
	{FileVideo, []string{"mp4", "webm"}},
	{FileText, []string{"txt", "log", "md", "py", "html", "css", "js", "ts", "sh"}},
	{FileDelimited, []string{"csv"}},
}

// Extension returns the lowercased text after the last "." of filename, or
// the whole lowercased name when it has no ".".
func Extension(filename string) string {
	if i := strings.LastIndexByte(filename, '.'); i >= 0 {
		return strings.ToLower(filename[i+1:])
	}
	return strings.ToLower(filename)
}

// ClassifyFile picks the presentation for filename by extension.
func ClassifyFile(filename string) FileClass {
	ext := Extension(filename)
	for _, c := range extensionClasses {
		for _, e := range c.exts {
			if e == ext {
				return c.class
			}
		}
	}
	return FileDownload
}

// ResolveURL resolves a server-relative path against origin.
func ResolveURL(origin, path string) string {
	segs := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(origin, "/") + "/" + strings.Join(segs, "/")
}

func (p *pass) file(path Path, refValue *core.Value, depth int) View {
	ref, _ := core.AsFileReference(refValue)
	fv := &FileView{
		Path:  path,
		Ref:   ref,
		Class: ClassifyFile(ref.Filename),
		URL:   ResolveURL(p.e.origin, ref.Path),
	}

	switch fv.Class {
	case FileAudio:
		fv.MIME = "audio/" + Extension(ref.Filename)
	case FileVideo:
		fv.MIME = "video/" + Extension(ref.Filename)
	case FileDelimited:
		key := path.String()
		n, fresh := p.state.bind(key, refValue)
		if fresh {
			n.gen = p.state.nextGen(key)
			p.requests = append(p.requests, FileRequest{Path: path, Gen: n.gen, Ref: ref, URL: fv.URL})
		}
		if !n.loaded {
			fv.Loading = true
			break
		}
		if depth+1 > p.e.maxDepth {
			break
		}
		if tv, ok := p.table(path.Child("rows"), n.records).(*TableView); ok {
			fv.Table = tv
		}
	}
	return fv
}
