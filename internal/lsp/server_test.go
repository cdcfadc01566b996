package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/jwinkels/ais/internal/resolve"
)

func TestNewServerCapabilities(t *testing.T) {
	s := NewServer(nil)

	sync, ok := s.capabilities.TextDocumentSync.(protocol.TextDocumentSyncOptions)
	require.True(t, ok)
	assert.True(t, sync.OpenClose)
	assert.Equal(t, protocol.TextDocumentSyncKindFull, sync.Change)

	require.NotNil(t, s.capabilities.CompletionProvider)
	assert.Equal(t, []string{"."}, s.capabilities.CompletionProvider.TriggerCharacters)
	assert.False(t, s.capabilities.CompletionProvider.ResolveProvider)

	require.NotNil(t, s.capabilities.ExecuteCommandProvider)
	assert.Equal(t, []string{CommandSyncCache}, s.capabilities.ExecuteCommandProvider.Commands)
}

func TestConvertKind(t *testing.T) {
	assert.Equal(t, protocol.CompletionItemKindField, convertKind(resolve.KindItem))
	assert.Equal(t, protocol.CompletionItemKindModule, convertKind(resolve.KindPackage))
	assert.Equal(t, protocol.CompletionItemKindFunction, convertKind(resolve.KindFunction))
	assert.Equal(t, protocol.CompletionItemKindConstant, convertKind(resolve.KindConstant))
	assert.Equal(t, protocol.CompletionItemKindText, convertKind(resolve.KindWord))
}
