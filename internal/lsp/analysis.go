package lsp

import (
	"context"
	"time"

	"oxide/internal/diag"
	"oxide/internal/driver"
)

// scheduleAnalysis откладывает разбор документа на debounce; новая правка
// отменяет и таймер, и уже идущий разбор.
func (s *Server) scheduleAnalysis(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.docs[uri]
	if doc == nil {
		return
	}
	doc.stop()
	s.seq++
	seq := s.seq
	doc.seq = seq
	doc.timer = time.AfterFunc(s.debounce, func() {
		s.runAnalysis(uri, seq)
	})
}

func (s *Server) reanalyzeAll() {
	s.mu.Lock()
	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	s.mu.Unlock()
	for _, uri := range uris {
		s.scheduleAnalysis(uri)
	}
}

// runAnalysis разбирает документ и публикует диагностики, если за время
// разбора документ не менялся.
func (s *Server) runAnalysis(uri string, seq uint64) {
	res, version, ok := s.analyzeDoc(uri, seq)
	if !ok {
		return
	}
	list := convertDiagnostics(uri, res)
	if s.currentTrace() {
		s.logf("publish: uri=%s version=%d diagnostics=%d", uri, version, len(list))
	}
	if err := s.sendPublish(uri, &version, list); err != nil {
		s.logf("failed to publish diagnostics: %v", err)
	}
}

// analyzeDoc: ok=false, если документ закрыт или изменился.
func (s *Server) analyzeDoc(uri string, seq uint64) (*driver.ParseResult, int, bool) {
	s.mu.Lock()
	doc := s.docs[uri]
	if doc == nil || doc.seq != seq {
		s.mu.Unlock()
		return nil, 0, false
	}
	ctx, cancel := context.WithCancel(s.baseCtx)
	doc.cancel = cancel
	text, version, opts := doc.text, doc.version, s.opts
	s.mu.Unlock()
	defer cancel()

	path := uriToPath(uri)
	start := time.Now()
	res := s.analyze(ctx, path, []byte(text), opts)
	if s.currentTrace() {
		s.logf("analyze: uri=%s seq=%d took=%s", uri, seq, time.Since(start))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil || s.docs[uri] != doc || doc.seq != seq {
		return nil, 0, false
	}
	doc.result = res
	doc.resultSeq = seq
	return res, version, true
}

// currentResult возвращает разбор актуального текста, при необходимости
// разбирая его сразу (запрос пришёл раньше debounce).
func (s *Server) currentResult(uri string) *driver.ParseResult {
	uri = canonicalURI(uri)
	s.mu.Lock()
	doc := s.docs[uri]
	if doc == nil {
		s.mu.Unlock()
		return nil
	}
	if doc.result != nil && doc.resultSeq == doc.seq {
		res := doc.result
		s.mu.Unlock()
		return res
	}
	seq := doc.seq
	s.mu.Unlock()

	res, _, ok := s.analyzeDoc(uri, seq)
	if !ok {
		return nil
	}
	return res
}

func convertDiagnostics(uri string, res *driver.ParseResult) []lspDiagnostic {
	if res == nil || res.Bag == nil {
		return nil
	}
	file := res.File
	list := make([]lspDiagnostic, 0, res.Bag.Len())
	for _, d := range res.Bag.Items() {
		if d.Primary.File != file.ID {
			continue
		}
		ld := lspDiagnostic{
			Range:    rangeForSpan(file, d.Primary),
			Severity: severityError,
			Code:     d.Code.ID(),
			Source:   "oxide",
			Message:  d.Message,
		}
		if d.Severity < diag.SevError {
			ld.Severity = severityWarning
		}
		for _, n := range d.Notes {
			if n.Span.File != file.ID {
				continue
			}
			ld.RelatedInformation = append(ld.RelatedInformation, diagnosticRelatedInformation{
				Location: location{URI: uri, Range: rangeForSpan(file, n.Span)},
				Message:  n.Msg,
			})
		}
		list = append(list, ld)
	}
	return list
}
