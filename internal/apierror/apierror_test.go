package apierror

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation_NilFieldsEncodeAsObject(t *testing.T) {
	b, err := json.Marshal(NewValidation(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"detail":"Erreur de validation","fields":{}}`, string(b))
}

func TestNew(t *testing.T) {
	b, err := json.Marshal(New("Stock insuffisant"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"detail":"Stock insuffisant"}`, string(b))
}
