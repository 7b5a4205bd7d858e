package php

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"

	"github.com/termfx/hlebhint/providers/base"
)

// Extensions handled by the parser
var Extensions = []string{".php", ".phtml"}

// IsPHPFile reports whether path has a PHP extension
func IsPHPFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range Extensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// Parser turns PHP source into Files. It is safe for concurrent use.
type Parser struct {
	pool  sync.Pool
	cache *base.ASTCache[Imports]
}

// NewParser creates a parser with its own tree cache
func NewParser() *Parser {
	return NewParserWithCache(base.NewASTCache[Imports](base.DefaultCacheSize, base.DefaultMaxAge))
}

// NewParserWithCache creates a parser backed by cache
func NewParserWithCache(cache *base.ASTCache[Imports]) *Parser {
	p := &Parser{cache: cache}
	p.pool.New = func() any {
		parser := sitter.NewParser()
		parser.SetLanguage(php.GetLanguage())
		return parser
	}
	return p
}

// Parse parses src. path is informational and may be empty.
func (p *Parser) Parse(ctx context.Context, path string, src []byte) (*File, error) {
	parser := p.pool.Get().(*sitter.Parser)
	defer p.pool.Put(parser)

	tree, imp, _, err := p.cache.GetOrParse(ctx, parser, src, collectImports)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &File{
		Path:    path,
		tree:    tree,
		src:     src,
		imports: imp,
	}, nil
}

// CacheStats exposes the tree cache counters
func (p *Parser) CacheStats() map[string]int64 {
	return p.cache.Stats()
}
