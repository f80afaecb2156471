package repository

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id             BIGSERIAL PRIMARY KEY,
	name           TEXT NOT NULL,
	email          TEXT NOT NULL UNIQUE,
	wallet_balance BIGINT NOT NULL DEFAULT 0 CHECK (wallet_balance >= 0),
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS flights (
	id              BIGSERIAL PRIMARY KEY,
	flight_number   TEXT NOT NULL,
	airline         TEXT NOT NULL,
	from_airport    TEXT NOT NULL,
	to_airport      TEXT NOT NULL,
	departure_time  TIMESTAMPTZ NOT NULL,
	arrival_time    TIMESTAMPTZ NOT NULL,
	total_seats     INTEGER NOT NULL CHECK (total_seats >= 0),
	available_seats INTEGER NOT NULL CHECK (available_seats >= 0 AND available_seats <= total_seats),
	base_price      BIGINT NOT NULL,
	current_price   BIGINT NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS bookings (
	id           BIGSERIAL PRIMARY KEY,
	pnr          TEXT NOT NULL,
	user_id      BIGINT NOT NULL REFERENCES users(id),
	flight_id    BIGINT NOT NULL REFERENCES flights(id),
	passengers   JSONB NOT NULL,
	total_amount BIGINT NOT NULL CHECK (total_amount > 0),
	status       TEXT NOT NULL CHECK (status IN ('Confirmed', 'Cancelled')),
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT bookings_pnr_key UNIQUE (pnr)
);
CREATE INDEX IF NOT EXISTS bookings_user_id_idx ON bookings (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS wallet_transactions (
	id          BIGSERIAL PRIMARY KEY,
	user_id     BIGINT NOT NULL REFERENCES users(id),
	amount      BIGINT NOT NULL CHECK (amount > 0),
	type        TEXT NOT NULL CHECK (type IN ('CREDIT', 'DEBIT')),
	description TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS wallet_transactions_user_id_idx ON wallet_transactions (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS booking_attempts (
	id           BIGSERIAL PRIMARY KEY,
	user_id      BIGINT NOT NULL,
	flight_id    BIGINT NOT NULL,
	attempted_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS booking_attempts_lookup_idx ON booking_attempts (user_id, flight_id, attempted_at);
`

// Timestamps are unix nanoseconds so range scans compare integers.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	name           TEXT NOT NULL,
	email          TEXT NOT NULL UNIQUE,
	wallet_balance INTEGER NOT NULL DEFAULT 0 CHECK (wallet_balance >= 0),
	created_at     INTEGER NOT NULL,
	updated_at     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS flights (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	flight_number   TEXT NOT NULL,
	airline         TEXT NOT NULL,
	from_airport    TEXT NOT NULL,
	to_airport      TEXT NOT NULL,
	departure_time  INTEGER NOT NULL,
	arrival_time    INTEGER NOT NULL,
	total_seats     INTEGER NOT NULL CHECK (total_seats >= 0),
	available_seats INTEGER NOT NULL CHECK (available_seats >= 0 AND available_seats <= total_seats),
	base_price      INTEGER NOT NULL,
	current_price   INTEGER NOT NULL DEFAULT 0,
	created_at      INTEGER NOT NULL,
	updated_at      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bookings (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	pnr          TEXT NOT NULL UNIQUE,
	user_id      INTEGER NOT NULL REFERENCES users(id),
	flight_id    INTEGER NOT NULL REFERENCES flights(id),
	passengers   TEXT NOT NULL,
	total_amount INTEGER NOT NULL CHECK (total_amount > 0),
	status       TEXT NOT NULL CHECK (status IN ('Confirmed', 'Cancelled')),
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS bookings_user_id_idx ON bookings (user_id, created_at);

CREATE TABLE IF NOT EXISTS wallet_transactions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id     INTEGER NOT NULL REFERENCES users(id),
	amount      INTEGER NOT NULL CHECK (amount > 0),
	type        TEXT NOT NULL CHECK (type IN ('CREDIT', 'DEBIT')),
	description TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS wallet_transactions_user_id_idx ON wallet_transactions (user_id, created_at);

CREATE TABLE IF NOT EXISTS booking_attempts (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id      INTEGER NOT NULL,
	flight_id    INTEGER NOT NULL,
	attempted_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS booking_attempts_lookup_idx ON booking_attempts (user_id, flight_id, attempted_at);
`
