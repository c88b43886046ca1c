package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/avries/Asset-Ledger-Backend/internal/apperrors"
	"github.com/avries/Asset-Ledger-Backend/internal/model"
)

// ProviderConfigRepository provides data access for the quote provider
// configuration. The API key is fernet-encrypted before it touches the
// database and decrypted on read; the plaintext key never leaves memory.
type ProviderConfigRepository struct {
	db  *sql.DB
	key *fernet.Key
}

// NewProviderConfigRepository creates a ProviderConfigRepository. fernetKey
// is the base64-encoded encryption key, typically taken from configuration.
func NewProviderConfigRepository(db *sql.DB, fernetKey string) (*ProviderConfigRepository, error) {
	key, err := fernet.DecodeKey(fernetKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fernet key: %w", err)
	}
	return &ProviderConfigRepository{db: db, key: key}, nil
}

// Get retrieves the provider configuration with the API key decrypted.
// Returns apperrors.ErrProviderConfigNotFound when none has been saved.
func (r *ProviderConfigRepository) Get() (model.ProviderConfig, error) {
	query := `
		SELECT id, base_url, api_key, quote_currency, updated_at
		FROM provider_config
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var cfg model.ProviderConfig
	var encryptedKey, updatedAtStr string
	err := r.db.QueryRow(query).Scan(&cfg.ID, &cfg.BaseURL, &encryptedKey, &cfg.QuoteCurrency, &updatedAtStr)
	if err == sql.ErrNoRows {
		return model.ProviderConfig{}, apperrors.ErrProviderConfigNotFound
	}
	if err != nil {
		return model.ProviderConfig{}, fmt.Errorf("failed to query provider_config table: %w", err)
	}

	plaintext := fernet.VerifyAndDecrypt([]byte(encryptedKey), 0, []*fernet.Key{r.key})
	if plaintext == nil {
		return model.ProviderConfig{}, fmt.Errorf("failed to decrypt provider api key")
	}
	cfg.APIKey = string(plaintext)

	cfg.UpdatedAt, err = ParseTime(updatedAtStr)
	if err != nil {
		return model.ProviderConfig{}, err
	}

	return cfg, nil
}

// Save stores the provider configuration, replacing any previous one. The
// API key is encrypted before insertion.
func (r *ProviderConfigRepository) Save(cfg model.ProviderConfig) (model.ProviderConfig, error) {
	encrypted, err := fernet.EncryptAndSign([]byte(cfg.APIKey), r.key)
	if err != nil {
		return model.ProviderConfig{}, fmt.Errorf("failed to encrypt provider api key: %w", err)
	}

	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	cfg.UpdatedAt = time.Now().UTC()

	tx, err := r.db.Begin()
	if err != nil {
		return model.ProviderConfig{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	// Single-row table: drop the previous configuration on save.
	if _, err := tx.Exec(`DELETE FROM provider_config`); err != nil {
		return model.ProviderConfig{}, fmt.Errorf("failed to clear provider_config table: %w", err)
	}

	insert := `
		INSERT INTO provider_config (id, base_url, api_key, quote_currency, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(insert, cfg.ID, cfg.BaseURL, string(encrypted), cfg.QuoteCurrency, FormatTime(cfg.UpdatedAt))
	if err != nil {
		return model.ProviderConfig{}, fmt.Errorf("failed to insert provider_config row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.ProviderConfig{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return cfg, nil
}
