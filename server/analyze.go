package server

import (
	"fmt"
	"sort"

	"github.com/lazykit/lazykit/syntax"
)

// ---------------------------------------------------------------------------
// Document analysis
// ---------------------------------------------------------------------------

// Severity grades a finding.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Finding is one positioned diagnostic for a declaration document.
type Finding struct {
	Pos      syntax.Position
	Severity Severity
	Message  string
}

func (f Finding) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", f.Pos.Line, f.Pos.Column, f.Severity, f.Message)
}

// Analyze checks declaration text and returns findings in source order.
// Parse errors and unsupported import forms are errors: a tracker block
// holding them fails as a whole. With a catalog, declarations naming
// modules outside it, or names a cataloged module is known not to
// export, are warnings.
func Analyze(text string, catalog *Catalog) []Finding {
	p := syntax.NewParser(text)
	file := p.ParseFile()

	var findings []Finding
	for _, perr := range p.Errors() {
		findings = append(findings, Finding{
			Pos:      perr.Pos,
			Severity: SeverityError,
			Message:  perr.Msg,
		})
	}

	if catalog != nil {
		for _, decl := range file.Decls {
			if !catalog.Covers(decl.Module) {
				findings = append(findings, Finding{
					Pos:      decl.Pos,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("unknown module %q", decl.Module),
				})
				continue
			}
			info, ok := catalog.Lookup(decl.Module)
			if !ok || len(info.Exports) == 0 {
				continue
			}
			for _, name := range decl.Names {
				if !info.HasExport(name) {
					findings = append(findings, Finding{
						Pos:      decl.Pos,
						Severity: SeverityWarning,
						Message:  fmt.Sprintf("module %q does not export %q", decl.Module, name),
					})
				}
			}
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Pos.Line != findings[j].Pos.Line {
			return findings[i].Pos.Line < findings[j].Pos.Line
		}
		return findings[i].Pos.Column < findings[j].Pos.Column
	})
	return findings
}
