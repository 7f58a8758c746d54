package dev_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailify/pkg/message"
	"github.com/dmitrymomot/mailify/pkg/transport"
	"github.com/dmitrymomot/mailify/pkg/transport/dev"
)

func TestSender_Send(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "outbox")
	msg, err := message.NewBuilder().
		From("noreply@example.com").
		To("bob@example.com").
		Subject("Reset your password!").
		HTML("<p>Reset</p>").
		Build()
	require.NoError(t, err)

	require.NoError(t, dev.New(dir).Send(context.Background(), msg))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var eml, summary string
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".eml":
			eml = e.Name()
		case ".json":
			summary = e.Name()
		}
	}
	require.NotEmpty(t, eml)
	require.NotEmpty(t, summary)
	assert.True(t, strings.HasSuffix(eml, "_reset_your_password.eml"), eml)

	data, err := os.ReadFile(filepath.Join(dir, summary))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "noreply@example.com", got["from"])
	assert.Equal(t, "Reset your password!", got["subject"])
	assert.Equal(t, msg.ID(), got["message_id"])
}

func TestSender_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msg, err := message.NewBuilder().From("a@example.com").To("b@example.com").Build()
	require.NoError(t, err)

	err = dev.New(t.TempDir()).Send(ctx, msg)

	var terr *transport.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, transport.KindCanceled, terr.Kind)
}
