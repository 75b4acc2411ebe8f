package server

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/lazykit/lazykit/syntax"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "lazykit-lsp"

// LspServer serves LSP editor features for deferred-import declaration
// documents: diagnostics, completion, and hover, answered from a module
// catalog.
type LspServer struct {
	catalog *Catalog

	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server answering from the given catalog.
// A nil catalog disables module checks; syntax diagnostics still work.
func NewLSP(catalog *Catalog) *LspServer {
	s := &LspServer{
		catalog: catalog,
		docs:    make(map[string]string),
		version: "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	commonlog.NewInfoMessage(0, "Lazykit LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{".", " ", ","},
	}

	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.mu.Lock()
			s.docs[string(uri)] = whole.Text
			text := whole.Text
			s.mu.Unlock()

			s.publishDiagnostics(ctx, uri, text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	findings := Analyze(text, s.catalog)

	diagnostics := make([]protocol.Diagnostic, 0, len(findings))
	for _, f := range findings {
		severity := protocol.DiagnosticSeverityError
		if f.Severity == SeverityWarning {
			severity = protocol.DiagnosticSeverityWarning
		}
		source := lspName
		pos := lspPosition(f.Pos)
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    protocol.Range{Start: pos, End: pos},
			Severity: &severity,
			Source:   &source,
			Message:  f.Message,
		})
	}

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	s.mu.Lock()
	text, ok := s.docs[string(params.TextDocument.URI)]
	s.mu.Unlock()

	if !ok {
		return nil, nil
	}

	line, col := documentLine(text, params.Position)
	site, module, frag := completionSiteAt(line, col)

	switch site {
	case siteFrom:
		return keywordItems("from", frag), nil
	case siteImport:
		return keywordItems("import", frag), nil
	case siteModule:
		return s.moduleItems(frag), nil
	case siteName:
		return s.exportItems(module, frag), nil
	}
	return nil, nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	s.mu.Lock()
	text, ok := s.docs[string(params.TextDocument.URI)]
	s.mu.Unlock()

	if !ok {
		return nil, nil
	}

	if path := extractModulePath(text, params.Position); path != "" {
		if h := s.hoverModule(path); h != nil {
			return h, nil
		}
	}

	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}
	if h := s.hoverModule(word); h != nil {
		return h, nil
	}
	return s.hoverName(text, word), nil
}

// --- Catalog-backed logic ---

func (s *LspServer) moduleItems(prefix string) []protocol.CompletionItem {
	if s.catalog == nil {
		return nil
	}

	var items []protocol.CompletionItem
	for _, path := range s.catalog.Paths() {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		kind := protocol.CompletionItemKindModule
		detail := "module"
		if info, ok := s.catalog.Lookup(path); ok && info.Doc != "" {
			detail = firstLine(info.Doc)
		}
		pathCopy := path
		items = append(items, protocol.CompletionItem{
			Label:      path,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &pathCopy,
		})
	}

	const maxItems = 100
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return items
}

func (s *LspServer) exportItems(module, prefix string) []protocol.CompletionItem {
	if s.catalog == nil {
		return nil
	}
	info, ok := s.catalog.Lookup(module)
	if !ok {
		return nil
	}

	var items []protocol.CompletionItem
	for _, name := range info.Exports {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		kind := protocol.CompletionItemKindValue
		detail := "export of " + module
		nameCopy := name
		items = append(items, protocol.CompletionItem{
			Label:      name,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &nameCopy,
		})
	}
	return items
}

func keywordItems(keyword, prefix string) []protocol.CompletionItem {
	if !strings.HasPrefix(keyword, prefix) {
		return nil
	}
	kind := protocol.CompletionItemKindKeyword
	kw := keyword
	return []protocol.CompletionItem{{
		Label:      keyword,
		Kind:       &kind,
		InsertText: &kw,
	}}
}

func (s *LspServer) hoverModule(path string) *protocol.Hover {
	if s.catalog == nil {
		return nil
	}
	info, ok := s.catalog.Lookup(path)
	if !ok {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n", info.Path)
	if info.Doc != "" {
		b.WriteString(info.Doc)
		b.WriteString("\n\n")
	}
	if len(info.Exports) > 0 {
		fmt.Fprintf(&b, "Exports: `%s`", strings.Join(info.Exports, " "))
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
	}
}

// hoverName answers hover for an imported name by finding the document
// declaration that binds it.
func (s *LspServer) hoverName(text, word string) *protocol.Hover {
	file, _ := syntax.Parse(text)
	if file == nil {
		return nil
	}

	for _, ref := range file.Refs() {
		if ref.Binding != word {
			continue
		}

		var b strings.Builder
		fmt.Fprintf(&b, "**%s**\n\n", ref.Name)
		fmt.Fprintf(&b, "Deferred import from `%s`; the module loads on first use.", ref.Module)
		if s.catalog != nil {
			if info, ok := s.catalog.Lookup(ref.Module); ok && info.Doc != "" {
				b.WriteString("\n\n---\n\n")
				b.WriteString(info.Doc)
			}
		}

		return &protocol.Hover{
			Contents: protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: b.String(),
			},
		}
	}
	return nil
}

// --- Cursor context helpers ---

type completionSite int

const (
	siteNone completionSite = iota
	siteFrom
	siteModule
	siteImport
	siteName
)

// completionSiteAt classifies the cursor position within a declaration
// line: which part of "from <module> import <name>, ..." is being typed.
// It returns the site, the module path for the names site, and the
// fragment already typed at the site.
func completionSiteAt(line string, col int) (completionSite, string, string) {
	if col > len(line) {
		col = len(line)
	}
	before := line[:col]
	trailing := strings.HasSuffix(before, " ") ||
		strings.HasSuffix(before, "\t") ||
		strings.HasSuffix(before, ",")

	fields := strings.Fields(before)
	if len(fields) == 0 {
		return siteFrom, "", ""
	}
	if fields[0] != "from" {
		if len(fields) == 1 && !trailing && strings.HasPrefix("from", fields[0]) {
			return siteFrom, "", fields[0]
		}
		return siteNone, "", ""
	}

	importIdx := -1
	for i := 1; i < len(fields); i++ {
		if fields[i] == "import" {
			importIdx = i
			break
		}
	}

	if importIdx < 0 {
		switch {
		case len(fields) == 1 && !trailing: // cursor still on "from"
			return siteFrom, "", fields[0]
		case len(fields) == 1: // "from "
			return siteModule, "", ""
		case len(fields) == 2 && !trailing: // "from app.mo"
			return siteModule, "", fields[1]
		case len(fields) == 2: // "from app.models "
			return siteImport, fields[1], ""
		case len(fields) == 3 && !trailing && strings.HasPrefix("import", fields[2]):
			return siteImport, fields[1], fields[2]
		}
		return siteNone, "", ""
	}

	if importIdx != 2 {
		return siteNone, "", ""
	}
	module := fields[1]

	// Fragment: the name piece being typed after the import keyword.
	frag := ""
	if !trailing {
		last := fields[len(fields)-1]
		if last != "import" {
			if i := strings.LastIndex(last, ","); i >= 0 {
				last = last[i+1:]
			}
			frag = last
		}
	}
	return siteName, module, frag
}

// --- Text extraction helpers ---

// documentLine returns the line under the cursor and the cursor's byte
// offset into it. Protocol positions count characters, so the offset is
// derived by walking runes.
func documentLine(text string, pos protocol.Position) (string, int) {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return "", 0
	}
	line := lines[pos.Line]

	col := 0
	for i := 0; i < int(pos.Character) && col < len(line); i++ {
		_, size := utf8.DecodeRuneInString(line[col:])
		col += size
	}
	return line, col
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isPathRune(r rune) bool {
	return isWordRune(r) || r == '.'
}

// widen grows [col, col) across runes satisfying ok and returns the
// byte bounds of the run under the cursor.
func widen(line string, col int, ok func(rune) bool) (int, int) {
	start := col
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(line[:start])
		if !ok(r) {
			break
		}
		start -= size
	}

	end := col
	for end < len(line) {
		r, size := utf8.DecodeRuneInString(line[end:])
		if !ok(r) {
			break
		}
		end += size
	}
	return start, end
}

// extractWord returns the full identifier under the cursor.
func extractWord(text string, pos protocol.Position) string {
	line, col := documentLine(text, pos)
	start, end := widen(line, col, isWordRune)
	return line[start:end]
}

// extractModulePath widens the identifier under the cursor across dots.
// Returns "" when the result is not a dotted path.
func extractModulePath(text string, pos protocol.Position) string {
	line, col := documentLine(text, pos)
	start, end := widen(line, col, isPathRune)

	path := strings.Trim(line[start:end], ".")
	if !strings.Contains(path, ".") {
		return ""
	}
	return path
}

// lspPosition converts a 1-based source position to a 0-based protocol one.
func lspPosition(pos syntax.Position) protocol.Position {
	p := protocol.Position{}
	if pos.Line > 0 {
		p.Line = protocol.UInteger(pos.Line - 1)
	}
	if pos.Column > 0 {
		p.Character = protocol.UInteger(pos.Column - 1)
	}
	return p
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func boolPtr(b bool) *bool {
	return &b
}
