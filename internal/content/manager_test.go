package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnconfiguredManager(t *testing.T) {
	ctx := context.Background()

	var nilMgr *Manager
	assert.False(t, nilMgr.Configured())

	m := NewManager("")
	assert.False(t, m.Configured())

	_, err := m.ListTestimonials(ctx, true)
	assert.ErrorIs(t, err, ErrNotConfigured)

	err = m.SetTestimonialApproval(ctx, "some-id", true)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, _, err = m.ListContactMessages(ctx, 1, 10)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestConfiguredManagerDoesNotConnectEagerly(t *testing.T) {
	// Construction with a URL must not dial anything; connections happen on
	// first use.
	m := NewManager("mongodb://localhost:27017")
	assert.True(t, m.Configured())
	assert.Nil(t, m.client)
}
