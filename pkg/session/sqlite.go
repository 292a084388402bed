// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/weftrun/weftcore/internal/sqlitedriver"
)

// schemaVersion is the single integer versioning the persisted row shape
// (spec §6).
const schemaVersion = 1

// SQLitePersister implements Persister against a single SQLite file,
// storing one row per exchange whose state column is updated in place on
// each transition; earlier states are not kept.
type SQLitePersister struct {
	db *sql.DB
}

// OpenSQLitePersister opens (and migrates) the exchange log at path.
func OpenSQLitePersister(path string) (*SQLitePersister, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("session: open sqlite: %w", err)
	}
	p := &SQLitePersister{db: db}
	if err := p.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *SQLitePersister) migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_meta (version INTEGER NOT NULL);
CREATE TABLE IF NOT EXISTS exchanges (
	session_id  TEXT NOT NULL,
	exchange_id TEXT NOT NULL,
	role        TEXT NOT NULL,
	state       TEXT NOT NULL,
	payload     TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	PRIMARY KEY (session_id, exchange_id)
);
CREATE INDEX IF NOT EXISTS idx_exchanges_session ON exchanges(session_id);
`)
	if err != nil {
		return fmt.Errorf("session: migrate: %w", err)
	}

	var count int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_meta`).Scan(&count); err != nil {
		return fmt.Errorf("session: read schema_meta: %w", err)
	}
	if count == 0 {
		if _, err := p.db.ExecContext(ctx, `INSERT INTO schema_meta (version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("session: seed schema_meta: %w", err)
		}
	}
	return nil
}

// AppendExchange inserts a new row. Because the primary key is
// (session_id, exchange_id), this either inserts the whole row atomically
// or fails outright — an exchange never appears partially (spec §4.7).
func (p *SQLitePersister) AppendExchange(ctx context.Context, row ExchangeRow) error {
	payloadJSON, err := json.Marshal(row.Payload)
	if err != nil {
		return fmt.Errorf("session: marshal payload: %w", err)
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO exchanges (session_id, exchange_id, role, state, payload, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		row.SessionID, row.ExchangeID, string(row.Role), string(row.State), string(payloadJSON), row.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("session: append exchange: %w", err)
	}
	return nil
}

// UpdateExchangeState updates the persisted state column in place.
func (p *SQLitePersister) UpdateExchangeState(ctx context.Context, sessionID, exchangeID string, state ExchangeState) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE exchanges SET state = ? WHERE session_id = ? AND exchange_id = ?`,
		string(state), sessionID, exchangeID,
	)
	if err != nil {
		return fmt.Errorf("session: update exchange state: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (p *SQLitePersister) Close() error {
	return p.db.Close()
}
