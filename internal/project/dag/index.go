// Package dag orders headers by their #include edges.
package dag

import (
	"slices"

	"sdl3gen/internal/project"
)

type HeaderID uint32

// HeaderIndex numbers the modules of the discovered headers in name order.
type HeaderIndex struct {
	NameToID map[string]HeaderID
	IDToName []string
}

// BuildIndex indexes the headers themselves. Included modules that were
// not discovered are left out.
func BuildIndex(metas []project.HeaderMeta) HeaderIndex {
	names := make([]string, 0, len(metas))
	for _, meta := range metas {
		if meta.Module != "" {
			names = append(names, meta.Module)
		}
	}
	slices.Sort(names)
	names = slices.Compact(names)

	nameToID := make(map[string]HeaderID, len(names))
	for i, name := range names {
		nameToID[name] = HeaderID(i)
	}
	return HeaderIndex{NameToID: nameToID, IDToName: names}
}
