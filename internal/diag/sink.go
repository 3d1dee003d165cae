package diag

import "loom/internal/source"

// Sink is the minimal contract for receiving diagnostics from a pass.
// Implementations: BagSink (collects into a Bag), NopSink.
type Sink interface {
	Report(code Code, sev Severity, primary source.Span, msg string)
}

// BagSink adapts a *Bag to the Sink interface.
type BagSink struct{ Bag *Bag }

func (s BagSink) Report(code Code, sev Severity, primary source.Span, msg string) {
	if s.Bag == nil {
		return
	}
	s.Bag.Add(Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary})
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Report(Code, Severity, source.Span, string) {}
