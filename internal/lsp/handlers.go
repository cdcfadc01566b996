package lsp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/jwinkels/ais/internal/cli/config"
	"github.com/jwinkels/ais/internal/oracle"
	"github.com/jwinkels/ais/internal/resolve"
	schemasync "github.com/jwinkels/ais/internal/sync"
)

// handleTextDocumentCompletion resolves completion candidates at the
// cursor. The resolver never fails; an empty list is a valid answer.
func (s *Server) handleTextDocumentCompletion(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.CompletionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse completion params")
	}
	if s.resolver == nil {
		return reply(ctx, protocol.CompletionList{Items: []protocol.CompletionItem{}}, nil)
	}

	text, ok := s.documents.get(string(params.TextDocument.URI))
	if !ok {
		return reply(ctx, protocol.CompletionList{Items: []protocol.CompletionItem{}}, nil)
	}
	offset := offsetAt(text, int(params.Position.Line), int(params.Position.Character))

	candidates := s.resolver.Complete(text, offset)

	items := make([]protocol.CompletionItem, 0, len(candidates))
	for _, c := range candidates {
		item := protocol.CompletionItem{
			Label:            c.Label,
			Kind:             convertKind(c.Kind),
			InsertText:       c.InsertText,
			CommitCharacters: c.CommitCharacters,
		}
		if c.Snippet {
			item.InsertTextFormat = protocol.InsertTextFormatSnippet
		} else {
			item.InsertTextFormat = protocol.InsertTextFormatPlainText
		}
		if c.Documentation != "" {
			item.Documentation = protocol.MarkupContent{
				Kind:  protocol.Markdown,
				Value: c.Documentation,
			}
		}
		items = append(items, item)
	}

	return reply(ctx, protocol.CompletionList{IsIncomplete: false, Items: items}, nil)
}

// handleExecuteCommand runs workspace commands. The only command is
// the cache sync, reported to the editor as work-done progress.
func (s *Server) handleExecuteCommand(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.ExecuteCommandParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse executeCommand params")
	}
	if params.Command != CommandSyncCache {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams,
			fmt.Sprintf("unknown command %q", params.Command))
	}
	if err := reply(ctx, nil, nil); err != nil {
		return err
	}

	// The crawl can take minutes; run it off the handler goroutine so
	// completion requests stay responsive. The engine enforces the
	// one-sync-at-a-time invariant.
	go s.runSync(ctx)
	return nil
}

func (s *Server) runSync(ctx context.Context) {
	cfg, err := config.Load(s.workspaceRoot)
	if err != nil {
		s.showError(ctx, fmt.Sprintf("ais: cannot load config: %v", err))
		return
	}
	password := config.Password()
	if password == "" {
		s.showError(ctx, "ais: AIS_PASSWORD is not set; cannot connect")
		return
	}

	db, err := oracle.Connect(ctx, cfg.Connection, cfg.Username, password)
	if err != nil {
		s.showError(ctx, fmt.Sprintf("ais: %v", err))
		return
	}
	defer db.Close()

	token := protocol.NewProgressToken(uuid.NewString())
	if err := s.client.WorkDoneProgressCreate(ctx, &protocol.WorkDoneProgressCreateParams{Token: *token}); err != nil {
		s.logger.Warn("progress token rejected", zap.Error(err))
		token = nil
	}
	s.progressBegin(ctx, token, "Syncing Oracle schema")

	engine := schemasync.NewEngine(db, s.store, s.logger)
	result, err := engine.Run(ctx, schemasync.Options{
		PublicPackages: cfg.Options.PublicPackages,
		RefreshLibrary: cfg.Options.LoadApexPackages,
		OnProgress: func(p schemasync.Progress) {
			s.progressReport(ctx, token, p)
		},
	})
	s.progressEnd(ctx, token)

	if err != nil {
		s.showError(ctx, fmt.Sprintf("ais: sync failed: %v", err))
		return
	}
	if result.LibraryRefreshed {
		if err := cfg.SetLoadApexPackages(false); err != nil {
			s.logger.Warn("could not clear library refresh flag", zap.Error(err))
		}
	}
	for _, p := range result.Problems {
		s.logger.Warn("sync problem", zap.String("object", p.Object), zap.Error(p.Err))
	}

	msg := "ais: cache updated"
	if n := len(result.Problems); n > 0 {
		msg = fmt.Sprintf("ais: cache updated with %d skipped objects", n)
	}
	if err := s.client.ShowMessage(ctx, &protocol.ShowMessageParams{
		Type:    protocol.MessageTypeInfo,
		Message: msg,
	}); err != nil {
		s.logger.Warn("showMessage failed", zap.Error(err))
	}
}

func (s *Server) progressBegin(ctx context.Context, token *protocol.ProgressToken, title string) {
	if token == nil {
		return
	}
	s.notifyProgress(ctx, token, protocol.WorkDoneProgressBegin{
		Kind:        protocol.WorkDoneProgressKindBegin,
		Title:       title,
		Cancellable: true,
	})
}

func (s *Server) progressReport(ctx context.Context, token *protocol.ProgressToken, p schemasync.Progress) {
	if token == nil {
		return
	}
	s.notifyProgress(ctx, token, protocol.WorkDoneProgressReport{
		Kind:       protocol.WorkDoneProgressKindReport,
		Message:    p.Message,
		Percentage: uint32(p.Fraction * 100),
	})
}

func (s *Server) progressEnd(ctx context.Context, token *protocol.ProgressToken) {
	if token == nil {
		return
	}
	s.notifyProgress(ctx, token, protocol.WorkDoneProgressEnd{
		Kind: protocol.WorkDoneProgressKindEnd,
	})
}

func (s *Server) notifyProgress(ctx context.Context, token *protocol.ProgressToken, value interface{}) {
	if err := s.client.Progress(ctx, &protocol.ProgressParams{
		Token: *token,
		Value: value,
	}); err != nil {
		s.logger.Warn("progress notification failed", zap.Error(err))
	}
}

func (s *Server) showError(ctx context.Context, message string) {
	s.logger.Error(message)
	if err := s.client.ShowMessage(ctx, &protocol.ShowMessageParams{
		Type:    protocol.MessageTypeError,
		Message: message,
	}); err != nil {
		s.logger.Warn("showMessage failed", zap.Error(err))
	}
}

func convertKind(kind resolve.Kind) protocol.CompletionItemKind {
	switch kind {
	case resolve.KindItem:
		return protocol.CompletionItemKindField
	case resolve.KindPackage:
		return protocol.CompletionItemKindModule
	case resolve.KindFunction:
		return protocol.CompletionItemKindFunction
	case resolve.KindConstant:
		return protocol.CompletionItemKindConstant
	default:
		return protocol.CompletionItemKindText
	}
}
