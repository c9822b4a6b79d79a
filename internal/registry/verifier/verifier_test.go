package verifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"proofregistry/internal/registry/models"
)

func TestZeroChallenge(t *testing.T) {
	v := ZeroChallenge{}

	assert.True(t, v.Verify(&models.Proof{}))

	p := &models.Proof{}
	p.Challenge[31] = 1
	assert.False(t, v.Verify(p))

	p = &models.Proof{}
	p.Response[0] = 0xff
	p.Commitment[0] = 0xff
	assert.True(t, v.Verify(p), "only the challenge is compared")
}
