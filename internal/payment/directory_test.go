package payment_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinjernot/wg-sub000/internal/adapter"
	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/payment"
)

const accountsJSON = `{
  "davidvs": {
    "bank-transfer": {
      "selected_id": 2,
      "accounts": [
        {"id": 1, "name": "David BBVA", "bank": "BBVA", "holder": "David V", "clabe": "012180000000000001"},
        {"id": 2, "name": "David Scotiabank", "bank": "Scotiabank", "holder": "David V", "clabe": "044180000000000002", "name_keywords": ["david v"]}
      ]
    },
    "oxxo": {
      "selected_id": "card-1",
      "accounts": [
        {"id": "card-1", "name": "David Spin", "bank": "Spin by OXXO", "holder": "David V", "card_number": "4217 0000 0000 0001"}
      ]
    },
    "paypal": {"selected_id": "", "accounts": []}
  }
}`

func setupTestDirectory(t *testing.T, content string) payment.Directory {
	path := filepath.Join(t.TempDir(), "payment_accounts.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return payment.NewDirectory(adapter.NewFileSystem(), adapter.NewJSON(), path)
}

func TestDirectory_Selected(t *testing.T) {
	dir := setupTestDirectory(t, accountsJSON)

	tests := []struct {
		name     string
		owner    string
		method   string
		expected string
	}{
		{"numeric ids", "davidvs", "bank-transfer", "David Scotiabank"},
		{"spei maps onto bank transfer", "davidvs", domain.MethodSPEI, "David Scotiabank"},
		{"domestic wire maps onto bank transfer", "davidvs", domain.MethodDomesticTransfer, "David Scotiabank"},
		{"string ids", "davidvs", "oxxo", "David Spin"},
		{"owner case is ignored", "DavidVS", "oxxo", "David Spin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := dir.Selected(tt.owner, tt.method)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, account.Name)
		})
	}
}

func TestDirectory_SelectedKeywords(t *testing.T) {
	dir := setupTestDirectory(t, accountsJSON)

	account, err := dir.Selected("davidvs", "bank-transfer")
	require.NoError(t, err)
	assert.Equal(t, payment.ID("2"), account.ID)
	assert.Equal(t, []string{"david v"}, account.NameKeywords)
	assert.Equal(t, "044180000000000002", account.CLABE)
}

func TestDirectory_NoSelection(t *testing.T) {
	dir := setupTestDirectory(t, accountsJSON)

	for _, tc := range [][2]string{{"davidvs", "paypal"}, {"davidvs", "gift-card"}, {"JoeWillgang", "oxxo"}} {
		_, err := dir.Selected(tc[0], tc[1])
		require.Error(t, err, tc)
		assert.True(t, errors.Is(err, domain.ErrNoSelectedAccount), tc)
	}
}

func TestDirectory_SelectedIDMissing(t *testing.T) {
	dir := setupTestDirectory(t, `{"davidvs":{"oxxo":{"selected_id":"9","accounts":[{"id":"1","name":"x"}]}}}`)

	_, err := dir.Selected("davidvs", "oxxo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoSelectedAccount))
}

func TestDirectory_ReadsFileOnEveryLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payment_accounts.json")
	require.NoError(t, os.WriteFile(path, []byte(accountsJSON), 0o600))
	dir := payment.NewDirectory(adapter.NewFileSystem(), adapter.NewJSON(), path)

	account, err := dir.Selected("davidvs", "oxxo")
	require.NoError(t, err)
	assert.Equal(t, "David Spin", account.Name)

	require.NoError(t, os.WriteFile(path, []byte(`{"davidvs":{"oxxo":{"selected_id":"c2","accounts":[{"id":"c2","name":"David Azteca"}]}}}`), 0o600))

	account, err = dir.Selected("davidvs", "oxxo")
	require.NoError(t, err)
	assert.Equal(t, "David Azteca", account.Name)
}

func TestDirectory_MissingFile(t *testing.T) {
	dir := payment.NewDirectory(adapter.NewFileSystem(), adapter.NewJSON(), filepath.Join(t.TempDir(), "none.json"))

	_, err := dir.Selected("davidvs", "oxxo")
	require.Error(t, err)
}
