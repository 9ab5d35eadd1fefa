package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProviderFIFO(t *testing.T) {
	m := NewMockProvider(
		MockResponse{Text: "first"},
		MockResponse{Text: "second"},
	)

	resp, err := m.Generate(context.Background(), Request{System: "tutor"})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Text)

	resp, err = m.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Text)

	// Empty queue degrades to provider-unavailable.
	_, err = m.Generate(context.Background(), Request{})
	var unavailable *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavailable)

	assert.Equal(t, 3, m.CallCount())
	assert.Equal(t, "tutor", m.Calls[0].System)
}

func TestMockProviderEmptyText(t *testing.T) {
	m := NewMockProvider(MockResponse{Text: ""})
	_, err := m.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
