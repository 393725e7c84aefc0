package session

import "github.com/openkcm/comment-gateway/internal/nonce"

// SetNonceGenerator replaces the nonce source for testing purposes.
func (m *Manager) SetNonceGenerator(g nonce.Generator) {
	m.nonce = g
}

var WithQueryParam = withQueryParam
