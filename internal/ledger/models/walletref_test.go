package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletRefNormalization(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want WalletRef
	}{
		{"scalar id", `"f-123"`, "f-123"},
		{"organization sentinel", `"org"`, "org"},
		{"object with id field", `{"id":"f-123"}`, "f-123"},
		{"object with document path", `{"path":"orgs/abc/funders/f-123"}`, "f-123"},
		{"bare path string", `"orgs/abc/funders/f-123"`, "f-123"},
		{"empty object", `{}`, ""},
		{"null", `null`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ref WalletRef
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &ref))
			assert.Equal(t, tt.want, ref)
		})
	}
}

func TestWalletRefNormalizationInsideTransaction(t *testing.T) {
	raw := `{"id":"00000000-0000-0000-0000-000000000001","type":"expense","amount":"25","currency":"USD","walletId":{"id":"f-9"},"description":"supplies","status":"pending"}`

	var tx Transaction
	require.NoError(t, json.Unmarshal([]byte(raw), &tx))
	assert.Equal(t, WalletRef("f-9"), tx.Wallet)

	// Re-encoding emits the scalar form only.
	out, err := json.Marshal(tx)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"walletId":"f-9"`)
}
