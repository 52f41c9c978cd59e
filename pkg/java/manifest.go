package java

import (
	"encoding/json"
	"fmt"
	"sort"

	ckerrors "github.com/provide-io/craftkit/pkg/errors"
	"github.com/provide-io/craftkit/pkg/platform"
)

// ManifestKey is the Mojang runtime list key for p, or "" if Mojang ships
// nothing for it.
func ManifestKey(p platform.Platform) string {
	switch p.OS {
	case platform.Linux:
		switch p.Arch {
		case platform.AMD64:
			return "linux"
		case platform.I386:
			return "linux-i386"
		}
	case platform.Darwin:
		switch p.Arch {
		case platform.AMD64:
			return "mac-os"
		case platform.ARM64:
			return "mac-os-arm64"
		}
	case platform.Windows:
		switch p.Arch {
		case platform.AMD64:
			return "windows-x64"
		case platform.I386:
			return "windows-x86"
		case platform.ARM64:
			return "windows-arm64"
		}
	}
	return ""
}

// RuntimeList is the Mojang all.json index: platform key → component → builds.
type RuntimeList map[string]map[string][]RuntimeBuild

type RuntimeBuild struct {
	Manifest DownloadRef `json:"manifest"`
	Version  struct {
		Name     string `json:"name"`
		Released string `json:"released"`
	} `json:"version"`
}

// Manifest returns the file manifest reference for v on p, if Mojang has a
// build.
func (l RuntimeList) Manifest(v Version, p platform.Platform) (DownloadRef, bool) {
	key := ManifestKey(p)
	if key == "" {
		return DownloadRef{}, false
	}
	builds := l[key][v.Component()]
	if len(builds) == 0 || builds[0].Manifest.URL == "" {
		return DownloadRef{}, false
	}
	return builds[0].Manifest, true
}

// NodeType is the kind of a file manifest entry.
type NodeType string

const (
	NodeFile      NodeType = "file"
	NodeDirectory NodeType = "directory"
	NodeLink      NodeType = "link"
)

// FileManifest is the per-runtime file tree: relative path → node.
type FileManifest struct {
	Files map[string]Node `json:"files"`
}

// Paths returns the manifest paths in lexical order, so parents sort before
// their children.
func (m *FileManifest) Paths() []string {
	paths := make([]string, 0, len(m.Files))
	for p := range m.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Node is one entry of a file manifest, tagged by Type.
type Node struct {
	Type       NodeType
	Downloads  FileDownloads
	Executable bool
	Target     string
}

type FileDownloads struct {
	Raw  DownloadRef  `json:"raw"`
	LZMA *DownloadRef `json:"lzma,omitempty"`
}

type DownloadRef struct {
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
	URL  string `json:"url"`
}

// UnmarshalJSON decodes the variant named by the "type" field. An unknown
// type, or a file without a raw download, matches ErrDescriptorSchema.
func (n *Node) UnmarshalJSON(data []byte) error {
	var head struct {
		Type NodeType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	switch head.Type {
	case NodeFile:
		var f struct {
			Downloads  *FileDownloads `json:"downloads"`
			Executable bool           `json:"executable"`
		}
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		if f.Downloads == nil || f.Downloads.Raw.URL == "" {
			return fmt.Errorf("%w: file node without a raw download", ckerrors.ErrDescriptorSchema)
		}
		*n = Node{Type: NodeFile, Downloads: *f.Downloads, Executable: f.Executable}
	case NodeDirectory:
		*n = Node{Type: NodeDirectory}
	case NodeLink:
		var l struct {
			Target string `json:"target"`
		}
		if err := json.Unmarshal(data, &l); err != nil {
			return err
		}
		*n = Node{Type: NodeLink, Target: l.Target}
	default:
		return fmt.Errorf("%w: unknown node type %q", ckerrors.ErrDescriptorSchema, head.Type)
	}
	return nil
}
