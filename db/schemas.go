package db

var schema = `
CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

CREATE TABLE IF NOT EXISTS events (
	event_id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
	title VARCHAR(255) NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	date TIMESTAMPTZ NOT NULL,
	time VARCHAR(16) NOT NULL DEFAULT '',
	venue VARCHAR(255) NOT NULL,
	capacity INT NOT NULL,
	price_amount NUMERIC(10, 2) NOT NULL,
	price_currency CHAR(3) NOT NULL,
	image_url TEXT NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tickets (
	ticket_id UUID PRIMARY KEY,
	event_id UUID NOT NULL REFERENCES events (event_id),
	ticket_code VARCHAR(12) NOT NULL UNIQUE,
	qr_payload TEXT NOT NULL UNIQUE,
	qr_image TEXT NOT NULL DEFAULT '',
	status VARCHAR(16) NOT NULL,
	buyer_name VARCHAR(255) NOT NULL,
	buyer_email VARCHAR(255) NOT NULL,
	buyer_phone VARCHAR(64) NOT NULL DEFAULT '',
	user_id UUID,
	issued_at TIMESTAMPTZ,
	used_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS tickets_event_status_idx ON tickets (event_id, status);
CREATE INDEX IF NOT EXISTS tickets_buyer_email_idx ON tickets (buyer_email);

CREATE TABLE IF NOT EXISTS payment_logs (
	reference VARCHAR(255) PRIMARY KEY,
	ticket_id UUID REFERENCES tickets (ticket_id),
	amount NUMERIC(10, 2) NOT NULL,
	currency CHAR(3) NOT NULL,
	provider VARCHAR(32) NOT NULL,
	status VARCHAR(16) NOT NULL,
	channel VARCHAR(32) NOT NULL DEFAULT '',
	paid_at TIMESTAMPTZ,
	raw_payload JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS event_log (
	event_id UUID PRIMARY KEY,
	published_at TIMESTAMPTZ NOT NULL,
	event_name VARCHAR(255) NOT NULL,
	event_payload JSONB NOT NULL
);
`
