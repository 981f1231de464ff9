package model

import (
	"sdl3gen/internal/ast"
	"sdl3gen/internal/parser"
)

// fixedWidth are the SDL integer typedefs. They resolve even when
// SDL_stdinc.h is not part of the run.
var fixedWidth = map[string]string{
	"Sint8": "int8_t", "Uint8": "uint8_t",
	"Sint16": "int16_t", "Uint16": "uint16_t",
	"Sint32": "int32_t", "Uint32": "uint32_t",
	"Sint64": "int64_t", "Uint64": "uint64_t",
}

// externalTypes are platform API types that appear in SDL signatures. The
// value is the C type used for their layout.
var externalTypes = map[string]string{
	"VkInstance":                "void *",
	"VkPhysicalDevice":          "void *",
	"VkDevice":                  "void *",
	"VkQueue":                   "void *",
	"VkSurfaceKHR":              "uint64_t",
	"VkAllocationCallbacks":     "void *",
	"PFN_vkGetInstanceProcAddr": "void *",
	"EGLDisplay":                "void *",
	"EGLConfig":                 "void *",
	"EGLSurface":                "void *",
	"EGLAttrib":                 "intptr_t",
	"EGLint":                    "int32_t",
	"HWND":                      "void *",
	"HDC":                       "void *",
	"HINSTANCE":                 "void *",
	"MSG":                       "void *",
	"JNIEnv":                    "void *",
	"jobject":                   "void *",
	"XEvent":                    "void *",
	"Display":                   "void *",
	"Window":                    "uint64_t",
	"FILE":                      "void *",
}

// cLibrarySymbols are C runtime and compiler names that headers rename
// with an object-like define (#define SDL_malloc malloc). Such defines bind
// nothing.
var cLibrarySymbols = map[string]bool{
	"malloc": true, "calloc": true, "realloc": true, "free": true, "alloca": true,
	"memcpy": true, "memmove": true, "memset": true, "memcmp": true,
	"strlen": true, "strlcpy": true, "strlcat": true, "strdup": true,
	"strcmp": true, "strncmp": true, "strchr": true, "strrchr": true, "strstr": true,
	"wcslen": true, "wcslcpy": true, "wcslcat": true, "wcscmp": true, "wcsncmp": true,
	"abs": true, "qsort": true, "bsearch": true, "getenv": true,
	"sprintf": true, "snprintf": true, "vsnprintf": true, "sscanf": true, "vsscanf": true,
	"inline": true, "alignof": true, "static_assert": true,
}

// symbols is the run-wide symbol table. Lookups are first-definition-wins.
type symbols struct {
	types  map[string]Item
	values map[string]*valueEntry
	macros map[string]*ast.Define

	// pass 0
	typedefs  map[string]ast.Type
	typeNames map[string]bool
	funcs     map[string]bool
	defines   map[string]bool

	decls map[string]*Provenance
}

func newSymbols() *symbols {
	return &symbols{
		types:     make(map[string]Item, 512),
		values:    make(map[string]*valueEntry, 4096),
		macros:    make(map[string]*ast.Define, 128),
		typedefs:  make(map[string]ast.Type, 256),
		typeNames: make(map[string]bool, 512),
		funcs:     make(map[string]bool, 1024),
		defines:   make(map[string]bool, 4096),
		decls:     make(map[string]*Provenance, 4096),
	}
}

// index records every name declared by the run before any module is built,
// so that classification does not depend on module order.
func (s *symbols) index(files []*ast.File) {
	for _, f := range files {
		for _, d := range f.Decls {
			switch x := d.(type) {
			case *ast.Define:
				if x.FuncLike {
					if _, ok := s.macros[x.Name.Name]; !ok && x.Value != nil {
						s.macros[x.Name.Name] = x
					}
					continue
				}
				s.defines[x.Name.Name] = true
			case *ast.Typedef:
				s.typeNames[x.Name.Name] = true
				if _, ok := s.typedefs[x.Name.Name]; !ok {
					s.typedefs[x.Name.Name] = x.Type
				}
			case *ast.RecordDecl:
				if x.Typedef != nil {
					s.typeNames[x.Typedef.Name] = true
				}
				if x.Tag != nil {
					s.typeNames[x.Tag.Name] = true
				}
			case *ast.EnumDecl:
				if x.Typedef != nil {
					s.typeNames[x.Typedef.Name] = true
				}
				for _, v := range x.Values {
					s.defines[v.Name.Name] = true
				}
			case *ast.FuncDecl:
				s.funcs[x.Name.Name] = true
			}
		}
	}
}

// isInteger reports a type name that is an integer after typedefs.
func (s *symbols) isInteger(name string) bool {
	for range 16 {
		if sc, ok := builtinScalars[name]; ok {
			return !sc.float && !sc.boolean
		}
		if base, ok := fixedWidth[name]; ok {
			name = base
			continue
		}
		n, ok := s.typedefs[name].(*ast.NamedType)
		if !ok || n.Tag != ast.TagNone {
			return false
		}
		name = n.Name
	}
	return false
}

// knownType reports whether an untagged type name resolves.
func (s *symbols) knownType(name string) bool {
	if parser.IsBuiltinType(name) {
		return true
	}
	if _, ok := fixedWidth[name]; ok {
		return true
	}
	if _, ok := externalTypes[name]; ok {
		return true
	}
	_, ok := s.types[name]
	return ok
}

// register binds a type key to its defining item unless already bound.
func (s *symbols) register(key string, it Item) {
	if _, ok := s.types[key]; !ok {
		s.types[key] = it
	}
}

func (s *symbols) addValue(e *valueEntry) {
	if _, ok := s.values[e.name]; !ok {
		s.values[e.name] = e
	}
}
