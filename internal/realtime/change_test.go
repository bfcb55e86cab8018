package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChange_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{
			name:    "Client shape",
			payload: `{"eventType":"UPDATE","table":"recargas_pix","old":{"status":"pendente_pagamento"},"new":{"status":"pago"}}`,
		},
		{
			name:    "Server shape",
			payload: `{"type":"UPDATE","table":"recargas_pix","old_record":{"status":"pendente_pagamento"},"record":{"status":"pago"},"commit_timestamp":"2024-05-01T10:00:00Z"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var change Change
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &change))

			assert.Equal(t, EventUpdate, change.EventType)
			assert.Equal(t, TablePixRecharges, change.Table)

			var before, after struct {
				Status string `json:"status"`
			}
			require.NoError(t, change.DecodeOld(&before))
			require.NoError(t, change.DecodeNew(&after))
			assert.Equal(t, "pendente_pagamento", before.Status)
			assert.Equal(t, "pago", after.Status)
		})
	}

	t.Run("Insert without old row", func(t *testing.T) {
		var change Change
		require.NoError(t, json.Unmarshal([]byte(`{"type":"INSERT","table":"transacoes_credito","record":{"id":"t1"},"old_record":null}`), &change))

		assert.Equal(t, EventInsert, change.EventType)
		assert.Nil(t, change.Old)

		var row struct {
			ID string `json:"id"`
		}
		require.NoError(t, change.DecodeOld(&row))
		assert.Empty(t, row.ID)
	})
}
