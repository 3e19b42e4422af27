package sim

import (
	"sort"
	"strings"
)

// dir is a directory of the simulated card.
type dir struct {
	name   string
	parent *dir
	dirs   map[string]*dir
	files  map[string][]byte
}

func newDir(name string, parent *dir) *dir {
	return &dir{
		name:   name,
		parent: parent,
		dirs:   make(map[string]*dir),
		files:  make(map[string][]byte),
	}
}

// exists reports whether name is taken by a file or a directory.
func (d *dir) exists(name string) bool {
	if _, ok := d.files[name]; ok {
		return true
	}
	_, ok := d.dirs[name]
	return ok
}

// fileNames returns the file names of d in sorted order.
func (d *dir) fileNames() []string {
	names := make([]string, 0, len(d.files))
	for name := range d.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// path renders the absolute path of d.
func (d *dir) path() string {
	if d.parent == nil {
		return "/"
	}
	var parts []string
	for cur := d; cur.parent != nil; cur = cur.parent {
		parts = append([]string{cur.name}, parts...)
	}
	return "/" + strings.Join(parts, "/")
}

// splitPath breaks a slash-separated path into its non-empty elements.
func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// walk resolves the directory elements of path from d. With create set,
// missing directories are created.
func (d *dir) walk(parts []string, create bool) *dir {
	cur := d
	for _, part := range parts {
		next, ok := cur.dirs[part]
		if !ok {
			if !create {
				return nil
			}
			next = newDir(part, cur)
			cur.dirs[part] = next
		}
		cur = next
	}
	return cur
}
