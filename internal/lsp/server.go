// Package lsp implements the AIS language server. It serves PL/SQL
// completion from the synced schema caches and exposes the cache sync
// as a workspace command, speaking JSON-RPC over stdin/stdout.
package lsp

import (
	"context"
	"encoding/json"
	"os"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"

	"github.com/jwinkels/ais/internal/cli/config"
	"github.com/jwinkels/ais/internal/resolve"
	"github.com/jwinkels/ais/internal/store"
)

// CommandSyncCache is the workspace/executeCommand identifier that
// triggers a schema sync from the editor.
const CommandSyncCache = "ais.syncCache"

// Server is the language server. It holds no schema state of its own;
// every completion request reloads the persisted caches through the
// resolver, so results always reflect the last completed sync.
type Server struct {
	conn   jsonrpc2.Conn
	client protocol.Client
	logger *zap.Logger

	documents *documentStore

	// workspaceRoot is set during initialize and anchors config and
	// cache paths.
	workspaceRoot string

	resolver *resolve.Resolver
	store    *store.Store

	capabilities protocol.ServerCapabilities

	cancel context.CancelFunc
}

// NewServer creates a server logging through log.
func NewServer(log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		logger:    log,
		documents: newDocumentStore(),
		capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{"."},
				ResolveProvider:   false,
			},
			ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
				Commands: []string{CommandSyncCache},
			},
		},
	}
}

// Run serves the connection until the context is canceled or the
// client requests exit.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting ais language server")

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	stream := jsonrpc2.NewStream(stdrwc{})
	conn := jsonrpc2.NewConn(stream)
	s.conn = conn
	s.client = protocol.ClientDispatcher(conn, s.logger.Named("client"))

	conn.Go(ctx, s.handler())

	<-ctx.Done()
	s.logger.Info("shutting down ais language server")
	return conn.Close()
}

// handler returns the JSON-RPC method mux.
func (s *Server) handler() jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		s.logger.Debug("request", zap.String("method", req.Method()))

		switch req.Method() {
		case protocol.MethodInitialize:
			return s.handleInitialize(ctx, reply, req)
		case protocol.MethodInitialized:
			return reply(ctx, nil, nil)
		case protocol.MethodShutdown:
			return reply(ctx, nil, nil)
		case protocol.MethodExit:
			return s.handleExit(ctx, reply, req)
		case protocol.MethodTextDocumentDidOpen:
			return s.handleTextDocumentDidOpen(ctx, reply, req)
		case protocol.MethodTextDocumentDidChange:
			return s.handleTextDocumentDidChange(ctx, reply, req)
		case protocol.MethodTextDocumentDidClose:
			return s.handleTextDocumentDidClose(ctx, reply, req)
		case protocol.MethodTextDocumentCompletion:
			return s.handleTextDocumentCompletion(ctx, reply, req)
		case protocol.MethodWorkspaceExecuteCommand:
			return s.handleExecuteCommand(ctx, reply, req)
		default:
			return reply(ctx, nil, jsonrpc2.ErrMethodNotFound)
		}
	}
}

func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse initialize params")
	}

	switch {
	case len(params.WorkspaceFolders) > 0:
		s.workspaceRoot = uri.URI(params.WorkspaceFolders[0].URI).Filename()
	case params.RootURI != "":
		s.workspaceRoot = params.RootURI.Filename()
	case params.RootPath != "":
		s.workspaceRoot = params.RootPath
	}
	s.logger.Info("workspace root", zap.String("path", s.workspaceRoot))

	s.store = store.New(s.workspaceRoot)
	if cfg, err := config.Load(s.workspaceRoot); err == nil {
		s.store.Dir = cfg.MetadataDir()
		s.store.LibraryPath = cfg.Paths.ApexCacheFile
	} else {
		s.logger.Warn("config load failed, using defaults", zap.Error(err))
	}
	s.resolver = resolve.New(s.store)

	result := protocol.InitializeResult{
		Capabilities: s.capabilities,
		ServerInfo: &protocol.ServerInfo{
			Name:    "ais-lsp",
			Version: "0.3.0",
		},
	}
	return reply(ctx, result, nil)
}

func (s *Server) handleExit(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	if err := reply(ctx, nil, nil); err != nil {
		s.logger.Warn("exit reply failed", zap.Error(err))
	}
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

func (s *Server) handleTextDocumentDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse didOpen params")
	}
	s.documents.open(string(params.TextDocument.URI), params.TextDocument.Text)
	return reply(ctx, nil, nil)
}

func (s *Server) handleTextDocumentDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse didChange params")
	}
	if len(params.ContentChanges) == 0 {
		return reply(ctx, nil, nil)
	}
	// Full document sync: the last change carries the whole text.
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	s.documents.update(string(params.TextDocument.URI), text)
	return reply(ctx, nil, nil)
}

func (s *Server) handleTextDocumentDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse didClose params")
	}
	s.documents.close(string(params.TextDocument.URI))
	return reply(ctx, nil, nil)
}

func (s *Server) replyWithError(ctx context.Context, reply jsonrpc2.Replier, code jsonrpc2.Code, message string) error {
	return reply(ctx, nil, &jsonrpc2.Error{
		Code:    code,
		Message: message,
	})
}

// stdrwc implements io.ReadWriteCloser over stdin/stdout.
type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
