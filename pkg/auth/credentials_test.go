package auth

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCredentialManager(t *testing.T) {
	// Use mock manager for reliable testing
	manager, mockStore := NewMockManager()

	account := &Account{
		Name:         "home",
		BaseURL:      "https://192.168.1.50:32400",
		Token:        "test_token_1234567890",
		LastModified: time.Now(),
	}

	err := manager.Store(account)
	if err != nil {
		t.Errorf("Failed to store account: %v", err)
	}

	retrieved, err := manager.Retrieve("home")
	if err != nil {
		t.Errorf("Failed to retrieve account: %v", err)
	}

	if retrieved.Name != account.Name {
		t.Errorf("Name mismatch: got %s, want %s", retrieved.Name, account.Name)
	}
	if retrieved.BaseURL != account.BaseURL {
		t.Errorf("BaseURL mismatch: got %s, want %s", retrieved.BaseURL, account.BaseURL)
	}
	if retrieved.Token != account.Token {
		t.Errorf("Token mismatch: got %s, want %s", retrieved.Token, account.Token)
	}

	accounts, err := manager.List()
	if err != nil {
		t.Errorf("Failed to list accounts: %v", err)
	}
	if len(accounts) == 0 {
		t.Error("Expected at least one account in list")
	}

	// Sanitization masks the token but keeps the rest readable
	sanitized := SanitizeAccount(account)
	if sanitized.Token == account.Token {
		t.Error("Token should be masked")
	}
	if sanitized.Name != account.Name {
		t.Error("Name should not be masked")
	}
	if sanitized.BaseURL != account.BaseURL {
		t.Error("BaseURL should not be masked")
	}

	err = manager.Delete("home")
	if err != nil {
		t.Errorf("Failed to delete account: %v", err)
	}

	_, err = manager.Retrieve("home")
	if err == nil {
		t.Error("Expected error retrieving deleted account")
	}

	if mockStore.Count() != 0 {
		t.Errorf("Expected 0 accounts after deletion, got %d", mockStore.Count())
	}
}

func TestManagerValidation(t *testing.T) {
	manager, _ := NewMockManager()

	cases := []struct {
		name    string
		account *Account
	}{
		{"missing name", &Account{BaseURL: "http://plex.local:32400", Token: "tok"}},
		{"missing base URL", &Account{Name: "home", Token: "tok"}},
		{"missing token", &Account{Name: "home", BaseURL: "http://plex.local:32400"}},
	}

	for _, tc := range cases {
		if err := manager.Store(tc.account); err == nil {
			t.Errorf("Expected validation error for %s", tc.name)
		}
	}
}

func TestEncryptedFileStore(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "servers.enc")

	os.Setenv("PLEXMIRROR_PASSPHRASE", "test_passphrase_123")
	defer os.Unsetenv("PLEXMIRROR_PASSPHRASE")

	store, err := NewEncryptedFileStore(tempFile)
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	account := &Account{
		Name:    "encrypted_server",
		BaseURL: "https://plex.example.com:32400",
		Token:   "secret_plex_token_value",
	}

	err = store.Store(account)
	if err != nil {
		t.Errorf("Failed to store in encrypted file: %v", err)
	}

	retrieved, err := store.Retrieve("encrypted_server")
	if err != nil {
		t.Errorf("Failed to retrieve from encrypted file: %v", err)
	}

	if retrieved.Token != account.Token {
		t.Errorf("Token mismatch after encryption/decryption")
	}

	// Verify the file is actually encrypted
	fileContent, err := os.ReadFile(tempFile)
	if err != nil {
		t.Fatal(err)
	}

	if bytes.Contains(fileContent, []byte("secret_plex_token_value")) {
		t.Error("File contains plaintext token")
	}
	if bytes.Contains(fileContent, []byte("plex.example.com")) {
		t.Error("File contains plaintext base URL")
	}
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "servers.enc")

	os.Setenv("PLEXMIRROR_PASSPHRASE", "first_passphrase")
	store, err := NewEncryptedFileStore(tempFile)
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	err = store.Store(&Account{Name: "home", BaseURL: "http://plex.local:32400", Token: "tok"})
	if err != nil {
		t.Fatalf("Failed to store account: %v", err)
	}

	os.Setenv("PLEXMIRROR_PASSPHRASE", "second_passphrase")
	defer os.Unsetenv("PLEXMIRROR_PASSPHRASE")

	reopened, err := NewEncryptedFileStore(tempFile)
	if err != nil {
		t.Fatalf("Failed to reopen encrypted store: %v", err)
	}

	if _, err := reopened.Retrieve("home"); err == nil {
		t.Error("Expected decryption to fail with the wrong passphrase")
	}
}

func TestEncryptedFileStoreGeneratesPassphrase(t *testing.T) {
	os.Unsetenv("PLEXMIRROR_PASSPHRASE")

	dir := t.TempDir()
	store, err := NewEncryptedFileStore(filepath.Join(dir, "servers.enc"))
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	err = store.Store(&Account{Name: "home", BaseURL: "http://plex.local:32400", Token: "tok"})
	if err != nil {
		t.Fatalf("Failed to store account: %v", err)
	}

	// The generated passphrase lands next to the store file
	if _, err := os.Stat(filepath.Join(dir, ".passphrase")); err != nil {
		t.Errorf("Expected a generated passphrase file: %v", err)
	}

	// A second store instance reads the same passphrase back
	again, err := NewEncryptedFileStore(filepath.Join(dir, "servers.enc"))
	if err != nil {
		t.Fatalf("Failed to reopen encrypted store: %v", err)
	}
	if _, err := again.Retrieve("home"); err != nil {
		t.Errorf("Failed to retrieve with persisted passphrase: %v", err)
	}
}

func TestEnvironmentStore(t *testing.T) {
	os.Setenv("PLEXMIRROR_BASE_URL", "http://env.plex.local:32400")
	os.Setenv("PLEXMIRROR_TOKEN", "env_token")
	defer os.Unsetenv("PLEXMIRROR_BASE_URL")
	defer os.Unsetenv("PLEXMIRROR_TOKEN")

	store := NewEnvironmentStore()

	account, err := store.Retrieve("")
	if err != nil {
		t.Errorf("Failed to retrieve from environment: %v", err)
	}

	if account.BaseURL != "http://env.plex.local:32400" {
		t.Errorf("BaseURL mismatch: got %s", account.BaseURL)
	}
	if account.Token != "env_token" {
		t.Errorf("Token mismatch: got %s", account.Token)
	}
	if account.Name != "default" {
		t.Errorf("Expected default name, got %s", account.Name)
	}

	// The environment store is read-only
	err = store.Store(&Account{})
	if err != ErrStoreUnavailable {
		t.Error("Expected ErrStoreUnavailable for environment store")
	}
	err = store.Delete("default")
	if err != ErrStoreUnavailable {
		t.Error("Expected ErrStoreUnavailable for environment delete")
	}
}

func TestRealManagerWithEncryptedStore(t *testing.T) {
	os.Setenv("PLEXMIRROR_PASSPHRASE", "test_passphrase_real_manager")
	defer os.Unsetenv("PLEXMIRROR_PASSPHRASE")

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(t.TempDir(), "servers.enc"))
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	manager := NewMockManagerWithStores(encryptedStore)

	account := &Account{
		Name:         "office",
		BaseURL:      "https://10.0.0.5:32400",
		Token:        "office_token",
		LastModified: time.Now(),
	}

	err = manager.Store(account)
	if err != nil {
		t.Fatalf("Failed to store account: %v", err)
	}

	accounts, err := manager.List()
	if err != nil {
		t.Fatalf("Failed to list accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("Expected 1 account in list, got %d", len(accounts))
	}

	retrieved, err := manager.Retrieve("office")
	if err != nil {
		t.Fatalf("Failed to retrieve account: %v", err)
	}

	if retrieved.Name != account.Name {
		t.Errorf("Name mismatch: got %s, want %s", retrieved.Name, account.Name)
	}
	if retrieved.Token != account.Token {
		t.Errorf("Token mismatch: got %s, want %s", retrieved.Token, account.Token)
	}
}

func TestMockStore(t *testing.T) {
	store := NewMockStore()

	accounts, err := store.List()
	if err != nil {
		t.Errorf("Failed to list empty store: %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("Expected 0 accounts, got %d", len(accounts))
	}

	account := &Account{
		Name:    "mock_server",
		BaseURL: "http://mock.plex.local:32400",
		Token:   "mock_token",
	}

	err = store.Store(account)
	if err != nil {
		t.Errorf("Failed to store account: %v", err)
	}

	if store.Count() != 1 {
		t.Errorf("Expected 1 account, got %d", store.Count())
	}

	if !store.Exists("mock_server") {
		t.Error("Account should exist")
	}

	// Error injection
	store.ListError = fmt.Errorf("injected error")
	_, err = store.List()
	if err == nil || err.Error() != "injected error" {
		t.Error("Expected injected error")
	}
}

func TestMaskString(t *testing.T) {
	if got := maskString("short"); got != "********" {
		t.Errorf("Short strings should be fully masked, got %q", got)
	}
	if got := maskString("abcdefghijklmnop"); got != "abcd...mnop" {
		t.Errorf("Unexpected mask: %q", got)
	}
}
