package lsp

import (
	"encoding/json"

	"oxide/internal/project"
)

// lspSettings: секция "oxide" настроек клиента
type lspSettings struct {
	Oxide oxideSettings `json:"oxide"`
}

type oxideSettings struct {
	MaxDiagnostics *uint `json:"maxDiagnostics,omitempty"`
	MaxDepth       *int  `json:"maxDepth,omitempty"`
	Trace          *bool `json:"trace,omitempty"`
}

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	if s.applySettings(params.Settings) {
		s.reanalyzeAll()
	}
	return nil
}

// applySettings reports whether parse limits changed.
func (s *Server) applySettings(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.opts.Parse
	if v := settings.Oxide.MaxDiagnostics; v != nil {
		s.opts.Parse.MaxDiagnostics = *v
	}
	if v := settings.Oxide.MaxDepth; v != nil && *v > 0 {
		s.opts.Parse.MaxDepth = *v
	}
	if v := settings.Oxide.Trace; v != nil {
		s.traceLSP = *v
	}
	return before != s.opts.Parse
}

// loadManifest берёт лимиты разбора из oxide.toml корня workspace.
func (s *Server) loadManifest(root string) {
	m, ok, err := project.LoadManifest(root)
	if err != nil {
		s.logf("manifest: %v", err)
		return
	}
	if !ok {
		return
	}
	s.mu.Lock()
	s.opts.Parse = m.Config.Parse
	s.mu.Unlock()
}

func (s *Server) currentTrace() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.traceLSP
}
