package diag

import "go.uber.org/zap"

// ZapSink is the default Sink, logging each diagnostic through a
// structured zap logger and latching HasErrors once any Error-kind
// diagnostic has been reported.
type ZapSink struct {
	log       *zap.SugaredLogger
	errored   bool
	collected []Diagnostic
}

// NewZapSink wraps logger (nil uses zap.NewNop, useful in tests).
func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{log: logger.Sugar()}
}

func (s *ZapSink) Report(d Diagnostic) {
	s.collected = append(s.collected, d)
	if d.Kind == Error {
		s.errored = true
	}
	fields := []any{"file", d.File, "line", d.Line, "column", d.Column}
	switch d.Kind {
	case Info:
		s.log.Infow(d.Message, fields...)
	case Debug:
		s.log.Debugw(d.Message, fields...)
	case Warning:
		s.log.Warnw(d.Message, fields...)
	case Error:
		s.log.Errorw(d.Message, fields...)
	}
}

func (s *ZapSink) HasErrors() bool { return s.errored }

// Diagnostics returns every diagnostic reported so far, in report order.
func (s *ZapSink) Diagnostics() []Diagnostic { return s.collected }

// CollectingSink is a minimal Sink for tests: no logging, just storage.
type CollectingSink struct {
	Diags   []Diagnostic
	errored bool
}

func (s *CollectingSink) Report(d Diagnostic) {
	s.Diags = append(s.Diags, d)
	if d.Kind == Error {
		s.errored = true
	}
}

func (s *CollectingSink) HasErrors() bool { return s.errored }
