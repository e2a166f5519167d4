package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/meridianir/capcall_backend/internal/apperrors"
	"github.com/meridianir/capcall_backend/internal/core/domain"
	portsrepo "github.com/meridianir/capcall_backend/internal/core/ports/repositories"
	"github.com/meridianir/capcall_backend/internal/utils/pagination"
)

type PgxCapitalCallRepository struct {
	BaseRepository
}

// newPgxCapitalCallRepository creates a new repository for capital call and item data.
func newPgxCapitalCallRepository(pool *pgxpool.Pool) portsrepo.CapitalCallRepositoryWithTx {
	return &PgxCapitalCallRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.CapitalCallRepositoryWithTx = (*PgxCapitalCallRepository)(nil)

const callColumns = `call_id, fund_id, deal_id, total_amount, currency_code, deadline, status, sent_at, created_at, created_by, last_updated_at, last_updated_by`

const itemColumns = `item_id, call_id, fund_id, investor_id, amount_due, amount_received, status, wire_received_at, reminder_count, last_reminder_at, created_at, created_by, last_updated_at, last_updated_by`

func scanCall(row pgx.Row) (*domain.CapitalCall, error) {
	var call domain.CapitalCall
	err := row.Scan(
		&call.CallID,
		&call.FundID,
		&call.DealID,
		&call.TotalAmount,
		&call.CurrencyCode,
		&call.Deadline,
		&call.Status,
		&call.SentAt,
		&call.CreatedAt,
		&call.CreatedBy,
		&call.LastUpdatedAt,
		&call.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &call, nil
}

func scanItem(row pgx.Row) (*domain.CapitalCallItem, error) {
	var item domain.CapitalCallItem
	err := row.Scan(
		&item.ItemID,
		&item.CallID,
		&item.FundID,
		&item.InvestorID,
		&item.AmountDue,
		&item.AmountReceived,
		&item.Status,
		&item.WireReceivedAt,
		&item.ReminderCount,
		&item.LastReminderAt,
		&item.CreatedAt,
		&item.CreatedBy,
		&item.LastUpdatedAt,
		&item.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SaveCall inserts a new capital call header.
func (r *PgxCapitalCallRepository) SaveCall(ctx context.Context, call domain.CapitalCall) error {
	query := `
		INSERT INTO capital_calls (call_id, fund_id, deal_id, total_amount, currency_code, deadline, status, sent_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		call.CallID,
		call.FundID,
		call.DealID,
		call.TotalAmount,
		call.CurrencyCode,
		call.Deadline,
		call.Status,
		call.SentAt,
		call.CreatedAt,
		call.CreatedBy,
		call.LastUpdatedAt,
		call.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert capital call %s: %w", call.CallID, err)
	}
	return nil
}

// SaveItem inserts a single call item.
func (r *PgxCapitalCallRepository) SaveItem(ctx context.Context, item domain.CapitalCallItem) error {
	query := `
		INSERT INTO capital_call_items (item_id, call_id, fund_id, investor_id, amount_due, amount_received, status, wire_received_at, reminder_count, last_reminder_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		item.ItemID,
		item.CallID,
		item.FundID,
		item.InvestorID,
		item.AmountDue,
		item.AmountReceived,
		item.Status,
		item.WireReceivedAt,
		item.ReminderCount,
		item.LastReminderAt,
		item.CreatedAt,
		item.CreatedBy,
		item.LastUpdatedAt,
		item.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert call item %s: %w", item.ItemID, err)
	}
	return nil
}

// FindCallByID retrieves a capital call by its unique identifier.
func (r *PgxCapitalCallRepository) FindCallByID(ctx context.Context, callID string) (*domain.CapitalCall, error) {
	query := `SELECT ` + callColumns + ` FROM capital_calls WHERE call_id = $1;`

	call, err := scanCall(r.Pool.QueryRow(ctx, query, callID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query capital call %s: %w", callID, err)
	}
	return call, nil
}

// FindItemByID retrieves a call item by its unique identifier.
func (r *PgxCapitalCallRepository) FindItemByID(ctx context.Context, itemID string) (*domain.CapitalCallItem, error) {
	query := `SELECT ` + itemColumns + ` FROM capital_call_items WHERE item_id = $1;`

	item, err := scanItem(r.Pool.QueryRow(ctx, query, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query call item %s: %w", itemID, err)
	}
	return item, nil
}

// FindItemsByCallID retrieves every item belonging to a capital call.
func (r *PgxCapitalCallRepository) FindItemsByCallID(ctx context.Context, callID string) ([]domain.CapitalCallItem, error) {
	query := `SELECT ` + itemColumns + ` FROM capital_call_items WHERE call_id = $1 ORDER BY created_at, item_id;`

	rows, err := r.Pool.Query(ctx, query, callID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items for call %s: %w", callID, err)
	}
	defer rows.Close()

	var items []domain.CapitalCallItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan call item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating call items: %w", err)
	}
	return items, nil
}

// ListCallsByFund retrieves a paginated list of capital calls for a fund using
// token-based keyset pagination on (created_at, call_id).
func (r *PgxCapitalCallRepository) ListCallsByFund(ctx context.Context, fundID string, limit int, nextToken *string) ([]domain.CapitalCall, *string, error) {
	query := `SELECT ` + callColumns + ` FROM capital_calls WHERE fund_id = $1`
	args := []interface{}{fundID}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		query += ` AND (created_at, call_id) < ($2, $3)`
		args = append(args, lastCreatedAt, lastID)
	}

	// Fetch one extra row to detect whether another page exists.
	query += fmt.Sprintf(` ORDER BY created_at DESC, call_id DESC LIMIT %d;`, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query capital calls for fund %s: %w", fundID, err)
	}
	defer rows.Close()

	var calls []domain.CapitalCall
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan capital call: %w", err)
		}
		calls = append(calls, *call)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating capital calls: %w", err)
	}

	var nextTokenVal *string
	if len(calls) > limit {
		calls = calls[:limit]
		last := calls[len(calls)-1]
		token := pagination.EncodeToken(last.CreatedAt, last.CallID)
		nextTokenVal = &token
	}

	return calls, nextTokenVal, nil
}

// MarkCallSent sets the call status to SENT and records the sent-at time.
func (r *PgxCapitalCallRepository) MarkCallSent(ctx context.Context, callID string, sentAt time.Time, updatedBy string) error {
	query := `
		UPDATE capital_calls
		SET status = $2, sent_at = $3, last_updated_at = $3, last_updated_by = $4
		WHERE call_id = $1 AND status = $5;
	`
	tag, err := r.Pool.Exec(ctx, query, callID, domain.CallSent, sentAt, updatedBy, domain.CallDraft)
	if err != nil {
		return fmt.Errorf("failed to mark call %s as sent: %w", callID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: call %s is not in draft", apperrors.ErrConflict, callID)
	}
	return nil
}

// UpdateCallStatus updates the call's aggregate status. CLOSED rows are never
// updated; the status machine treats them as terminal.
func (r *PgxCapitalCallRepository) UpdateCallStatus(ctx context.Context, callID string, status domain.CallStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE capital_calls
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE call_id = $1 AND status != $5;
	`
	tag, err := r.Pool.Exec(ctx, query, callID, status, updatedAt, updatedBy, domain.CallClosed)
	if err != nil {
		return fmt.Errorf("failed to update status of call %s: %w", callID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: call %s", apperrors.ErrNotFound, callID)
	}
	return nil
}

// ApplyWireReceipt adds a received amount to an item under a row lock,
// deriving the new status from the cumulative total. The lock serializes
// concurrent receipts for the same item so the derived status never reflects
// a lost update.
func (r *PgxCapitalCallRepository) ApplyWireReceipt(ctx context.Context, itemID string, amount decimal.Decimal, receivedAt time.Time, updatedBy string) (*domain.CapitalCallItem, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Rollback(ctx, tx)
	}()

	lockQuery := `SELECT ` + itemColumns + ` FROM capital_call_items WHERE item_id = $1 FOR UPDATE;`
	item, err := scanItem(tx.QueryRow(ctx, lockQuery, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock call item %s: %w", itemID, err)
	}

	now := time.Now().UTC()
	item.AmountReceived = item.AmountReceived.Add(amount)
	item.Status = item.StatusForReceived(item.AmountReceived)
	wireAt := receivedAt.UTC()
	item.WireReceivedAt = &wireAt
	item.LastUpdatedAt = now
	item.LastUpdatedBy = updatedBy

	updateQuery := `
		UPDATE capital_call_items
		SET amount_received = $2, status = $3, wire_received_at = $4, last_updated_at = $5, last_updated_by = $6
		WHERE item_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery,
		item.ItemID,
		item.AmountReceived,
		item.Status,
		item.WireReceivedAt,
		item.LastUpdatedAt,
		item.LastUpdatedBy,
	); err != nil {
		return nil, fmt.Errorf("failed to update call item %s: %w", itemID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return item, nil
}

// RecordReminderSent increments the item's reminder count and stamps the
// last-reminder time.
func (r *PgxCapitalCallRepository) RecordReminderSent(ctx context.Context, itemID string, sentAt time.Time) error {
	query := `
		UPDATE capital_call_items
		SET reminder_count = reminder_count + 1, last_reminder_at = $2, last_updated_at = $2
		WHERE item_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, itemID, sentAt)
	if err != nil {
		return fmt.Errorf("failed to record reminder for item %s: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: call item %s", apperrors.ErrNotFound, itemID)
	}
	return nil
}
