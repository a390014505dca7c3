package payment

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jinjernot/wg-sub000/internal/adapter"
	"github.com/jinjernot/wg-sub000/internal/domain"
)

// ID is an account id that may be written as a JSON string or number
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	*id = ID(strings.Trim(string(data), `"`))
	return nil
}

// Account is one bank account or card a buyer can pay into
type Account struct {
	ID           ID       `json:"id"`
	Name         string   `json:"name"`
	Bank         string   `json:"bank"`
	Holder       string   `json:"holder"`
	CLABE        string   `json:"clabe"`
	CardNumber   string   `json:"card_number"`
	NameKeywords []string `json:"name_keywords"`
}

// MethodAccounts holds the accounts of one payment method and which one is in use
type MethodAccounts struct {
	SelectedID ID        `json:"selected_id"`
	Accounts   []Account `json:"accounts"`
}

// Document maps owner -> payment method slug -> accounts
type Document map[string]map[string]MethodAccounts

// Directory resolves the payment account currently selected for an owner and method
//
//go:generate mockgen -source=directory.go -destination=../mocks/payment_directory.go -package=mocks -mock_names=Directory=MockPaymentDirectory
type Directory interface {
	Selected(owner string, method string) (Account, error)
}

type directory struct {
	fs   adapter.FileSystem
	json adapter.JSON
	path string
}

// NewDirectory creates a Directory reading path on every lookup so operator edits apply immediately
func NewDirectory(fs adapter.FileSystem, json adapter.JSON, path string) Directory {
	return &directory{fs: fs, json: json, path: path}
}

func (d *directory) Selected(owner string, method string) (Account, error) {
	data, err := d.fs.ReadFile(d.path)
	if err != nil {
		return Account{}, fmt.Errorf("failed to read payment accounts: %w", err)
	}
	var doc Document
	if err := d.json.Unmarshal(data, &doc); err != nil {
		return Account{}, fmt.Errorf("failed to decode payment accounts: %w", err)
	}

	methods, ok := lookupFold(doc, owner)
	if !ok {
		return Account{}, fmt.Errorf("%w: owner %q", domain.ErrNoSelectedAccount, owner)
	}
	accounts, ok := methods[NormalizeMethod(method)]
	if !ok {
		accounts, ok = methods[method]
	}
	if !ok || accounts.SelectedID == "" {
		return Account{}, fmt.Errorf("%w: owner %q method %q", domain.ErrNoSelectedAccount, owner, method)
	}

	for _, a := range accounts.Accounts {
		if a.ID == accounts.SelectedID {
			return a, nil
		}
	}
	return Account{}, fmt.Errorf("%w: selected id %q not found for owner %q method %q",
		domain.ErrNoSelectedAccount, accounts.SelectedID, owner, method)
}

// NormalizeMethod maps the bank transfer variants onto "bank-transfer"
func NormalizeMethod(method string) string {
	switch method {
	case domain.MethodSPEI, domain.MethodDomesticTransfer:
		return domain.MethodBankTransfer
	}
	return method
}

func lookupFold(doc Document, owner string) (map[string]MethodAccounts, bool) {
	if m, ok := doc[owner]; ok {
		return m, true
	}
	for k, m := range doc {
		if strings.EqualFold(k, owner) {
			return m, true
		}
	}
	return nil, false
}
