package driver

import (
	"sdl3gen/internal/diag"
	"sdl3gen/internal/lexer"
	"sdl3gen/internal/source"
	"sdl3gen/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
}

// Tokenize lexes one header; lexer diagnostics land in the bag.
func Tokenize(path string, maxDiagnostics int) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)

	bag := diag.NewBag(maxDiagnostics)
	tokens := lexer.All(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  tokens,
		Bag:     bag,
	}, nil
}
