package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simheat/internal/infrastructure/monitoring/logging"
)

func TestMockLogger_Records(t *testing.T) {
	m := NewMockLogger()
	m.Info("parsed", logging.Int("atoms", 3))
	m.Error("failed")

	msgs := m.GetMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "info", msgs[0].Level)
	assert.Equal(t, 3, msgs[0].Field("atoms"))
	assert.Nil(t, msgs[0].Field("missing"))
	assert.True(t, m.HasMessage("error", "failed"))
	assert.False(t, m.HasMessage("warn", "failed"))
}

func TestMockLogger_WithSharesBuffer(t *testing.T) {
	m := NewMockLogger()
	child := m.With(logging.String("dataset", "rh111"))
	child.Warn("slow")

	warns := m.MessagesAt("warn")
	require.Len(t, warns, 1)
	assert.Equal(t, "rh111", warns[0].Field("dataset"))

	m.Reset()
	assert.Empty(t, m.GetMessages())
}

//Personal.AI order the ending
