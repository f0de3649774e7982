package treesitter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
)

// langForExt returns the tree-sitter language for a file extension, or nil.
func langForExt(ext string) *sitter.Language {
	switch ext {
	case ".cs", ".csx":
		return csharp.GetLanguage()
	default:
		return nil
	}
}

// Supported returns true if the file extension has a tree-sitter grammar.
func Supported(path string) bool {
	return langForExt(strings.ToLower(filepath.Ext(path))) != nil
}

// ErrUnsupported is returned when a file has no grammar.
var ErrUnsupported = errors.New("unsupported source language")

// ParseFile reads and parses a file into revision 0.
func ParseFile(ctx context.Context, path string) (*Tree, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(ctx, path, src)
}

// Parse parses src into revision 0 of a new tree.
func Parse(ctx context.Context, path string, src []byte) (*Tree, error) {
	return parse(ctx, path, src, 0, nil, nil)
}

// Reparse parses src as the revision following prev, for content that
// changed outside a patch. Declarations are relocated by kind and name.
func Reparse(ctx context.Context, prev *Tree, src []byte) (*Tree, error) {
	return parse(ctx, prev.Path, src, prev.Revision+1, prev, nil)
}

func parse(ctx context.Context, path string, src []byte, revision int, parent *Tree, sp *splice) (*Tree, error) {
	lang := langForExt(strings.ToLower(filepath.Ext(path)))
	if lang == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	st, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &Tree{
		Path:     path,
		Revision: revision,
		parent:   parent,
		splice:   sp,
		src:      src,
		ts:       st,
		root:     st.RootNode(),
		text:     NewTextIndex(src),
	}, nil
}
