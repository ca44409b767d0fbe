package store

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	enqueueOutboxEntry = `INSERT INTO outbox (kind, recipient, file_ref, payload, attempts, next_run_time, created_at)
	VALUES ($1, $2, $3, $4, 0, NOW(), NOW())
	RETURNING id, attempts, next_run_time, created_at;`

	selectClaimedEntries = `SELECT id, kind, recipient, file_ref, payload, attempts, next_run_time, created_at
	FROM outbox
	WHERE marker = $1
	ORDER BY next_run_time ASC;`

	commitMarker = `DELETE FROM outbox WHERE marker = $1;`

	commitMarkerEntry = `DELETE FROM outbox WHERE marker = $1 AND id = $2;`

	cancelMarker = `UPDATE outbox
	SET marker = NULL, marked_at = NULL, attempts = attempts + 1, next_run_time = NOW() + $2::interval
	WHERE marker = $1;`

	cancelMarkerEntry = `UPDATE outbox
	SET marker = NULL, marked_at = NULL, attempts = attempts + 1, next_run_time = NOW() + $3::interval
	WHERE marker = $1 AND id = $2;`

	countPendingEntries = `SELECT COUNT(*) FROM outbox
	WHERE marker IS NULL AND next_run_time <= NOW();`

	getConnectionByIdentity = `SELECT identity, is_connected, revoked, circles, shared_secret, public_key
	FROM connections
	WHERE identity = $1;`

	upsertConnection = `INSERT INTO connections (identity, is_connected, revoked, circles, shared_secret, public_key)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (identity) DO UPDATE
	SET is_connected = EXCLUDED.is_connected,
	    revoked = EXCLUDED.revoked,
	    circles = EXCLUDED.circles,
	    shared_secret = EXCLUDED.shared_secret,
	    public_key = EXCLUDED.public_key;`
)

// buildClaimQuery builds the pop UPDATE that stamps up to maxCount runnable
// rows with marker. Rows are runnable when unclaimed (or their claim lease
// has lapsed, covering a process crash between pop and commit/cancel) and
// their next run time has arrived. SKIP LOCKED keeps concurrent pops from
// double-claiming.
func buildClaimQuery(marker string, maxCount int, leaseSeconds int) (string, []any, error) {
	sub := sq.Select("id").
		From("outbox").
		Where(sq.And{
			sq.Expr("(marker IS NULL OR marked_at < NOW() - $2 * INTERVAL '1 second')"),
			sq.Expr("next_run_time <= NOW()"),
		}).
		OrderBy("next_run_time ASC").
		Limit(uint64(maxCount)).
		Suffix("FOR UPDATE SKIP LOCKED")

	subSQL, _, err := sub.ToSql()
	if err != nil {
		return "", nil, err
	}

	query := sq.Update("outbox").
		Set("marker", sq.Expr("$1")).
		Set("marked_at", sq.Expr("NOW()")).
		Where("id IN ("+subSQL+")").
		Suffix("RETURNING id")

	querySQL, _, err := query.ToSql()
	if err != nil {
		return "", nil, err
	}

	return querySQL, []any{marker, leaseSeconds}, nil
}
