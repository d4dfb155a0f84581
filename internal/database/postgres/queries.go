package postgres

const (
	queryInsertFarm = `
INSERT INTO farms (farm_id, state, version)
VALUES ($1, $2, 0)
RETURNING updated_at`

	querySelectFarm = `
SELECT farm_id, state, version, updated_at
FROM farms
WHERE farm_id = $1`

	querySelectFarmForUpdate = querySelectFarm + `
FOR UPDATE`

	queryUpdateFarm = `
UPDATE farms
SET state = $2, version = $3, updated_at = NOW()
WHERE farm_id = $1`

	querySelectAppliedActions = `
SELECT action_id
FROM applied_actions
WHERE farm_id = $1 AND action_id = ANY($2)`

	queryInsertAppliedActions = `
INSERT INTO applied_actions (farm_id, action_id)
SELECT $1, unnest($2::varchar[])
ON CONFLICT DO NOTHING`

	queryInsertListing = `
INSERT INTO listings (item, amount, price)
VALUES ($1, $2::numeric, $3::numeric)
RETURNING listing_id::text, created_at`

	querySelectListingForUpdate = `
SELECT listing_id::text, item, amount::text, price::text, filled_by, created_at
FROM listings
WHERE listing_id = $1::uuid
FOR UPDATE`

	queryFillListing = `
UPDATE listings
SET filled_by = $2, filled_at = NOW()
WHERE listing_id = $1::uuid`

	queryInsertLedgerEvent = `
INSERT INTO ledger_events (event_type, farm_id, payload)
VALUES ($1, $2, $3)`

	querySelectLedgerEvents = `
SELECT id, event_type, farm_id, payload, created_at
FROM ledger_events
WHERE 1=1`

	queryDeleteLedgerEventsBefore = `
DELETE FROM ledger_events
WHERE created_at < $1`
)
