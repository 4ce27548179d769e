package server

import (
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/shinyvision/textbuf/internal/config"
	"github.com/shinyvision/textbuf/internal/textbuf"
	"github.com/shinyvision/textbuf/internal/utils"
)

const lsName = "textbuf"

var version = "0.0.1"

type Server struct {
	config *config.Config
	store  *DocumentStore
	h      protocol.Handler
}

func NewServer() *Server {
	cfg := config.NewConfig()
	s := &Server{
		config: cfg,
		store:  NewDocumentStore(cfg.MaxOpenDocuments),
	}
	s.h = protocol.Handler{
		Initialize:            s.initialize,
		Initialized:           s.initialized,
		Shutdown:              s.shutdown,
		SetTrace:              s.setTrace,
		TextDocumentDidOpen:   s.didOpen,
		TextDocumentDidChange: s.didChange,
		TextDocumentDidClose:  s.didClose,
	}
	return s
}

func (s *Server) Run() {
	server := glspserver.NewServer(&s.h, lsName, false)
	server.RunStdio()
}

func (s *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	caps := s.h.CreateServerCapabilities()
	openClose := true
	change := protocol.TextDocumentSyncKindIncremental
	caps.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &openClose,
		Change:    &change,
	}

	if params.InitializationOptions != nil {
		if m, ok := params.InitializationOptions.(map[string]any); ok {
			if cp, ok := m["config_path"]; ok {
				if str, ok := cp.(string); ok && str != "" {
					s.config.LoadFile(str)
				}
			}
		}
	}

	s.store = NewDocumentStore(s.config.MaxOpenDocuments)

	logger := commonlog.GetLoggerf("textbuf.server")
	logger.Infof("initialize: max %d documents, default indentation (tabSize=%d, insertSpaces=%v)",
		s.config.MaxOpenDocuments, s.config.TabSize, s.config.InsertSpaces)

	return protocol.InitializeResult{
		Capabilities: caps,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &version,
		},
	}, nil
}

func (s *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error { return nil }
func (s *Server) shutdown(_ *glsp.Context) error                                   { return nil }
func (s *Server) setTrace(_ *glsp.Context, p *protocol.SetTraceParams) error {
	protocol.SetTraceValue(p.Value)
	return nil
}

func (s *Server) didOpen(_ *glsp.Context, p *protocol.DidOpenTextDocumentParams) error {
	doc := NewDocument(p.TextDocument.URI, p.TextDocument.LanguageID, p.TextDocument.Version, p.TextDocument.Text)
	s.store.RegisterOpen(p.TextDocument.URI, doc)

	if s.config.DetectIndentation {
		guess := doc.DetectIndentation(s.config.TabSize, s.config.InsertSpaces)
		logger := commonlog.GetLoggerf("textbuf.server")
		logger.Debugf("opened %s: %d lines, indentation (tabSize=%d, insertSpaces=%v)",
			utils.UriToPath(p.TextDocument.URI), lineCount(doc), guess.TabSize, guess.InsertSpaces)
	}
	return nil
}

func (s *Server) didChange(_ *glsp.Context, p *protocol.DidChangeTextDocumentParams) error {
	doc, ok := s.store.Get(p.TextDocument.URI)
	if !ok {
		return nil
	}

	logger := commonlog.GetLoggerf("textbuf.server")
	for _, c := range p.ContentChanges {
		switch ch := c.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			doc.Replace(p.TextDocument.Version, ch.Text)
		case protocol.TextDocumentContentChangeEvent:
			if ch.Range == nil {
				doc.Replace(p.TextDocument.Version, ch.Text)
				continue
			}
			if err := doc.ApplyIncremental(p.TextDocument.Version, *ch.Range, ch.Text); err != nil {
				logger.Warningf("%v", err)
			}
		}
	}
	return nil
}

func (s *Server) didClose(_ *glsp.Context, p *protocol.DidCloseTextDocumentParams) error {
	s.store.Close(p.TextDocument.URI)
	return nil
}

func lineCount(doc *Document) int {
	cnt := 0
	doc.Read(func(buf *textbuf.Buffer) {
		cnt = buf.GetLineCount()
	})
	return cnt
}
