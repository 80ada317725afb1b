package store

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// dialect holds what differs between the supported SQL engines. Queries are
// written with ? placeholders and rebound by sqlx.
type dialect struct {
	name string
	// serializeWrites is set for engines without concurrent writers
	serializeWrites bool
	// forUpdate is appended to row reads inside update transactions
	forUpdate string
	schema    []string
}

//nolint:gochecknoglobals
var sqliteDialect = dialect{
	name:            DriverSQLite,
	serializeWrites: true,
	forUpdate:       "",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT    NOT NULL UNIQUE,
			email         TEXT    NOT NULL UNIQUE,
			password_hash BLOB    NOT NULL,
			user_type     TEXT    NOT NULL,
			created_at    INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS job_seeker_profiles (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL UNIQUE,
			first_name TEXT    NOT NULL,
			last_name  TEXT    NOT NULL,
			title      TEXT,
			bio        TEXT,
			location   TEXT,
			skills     TEXT    NOT NULL DEFAULT '[]',
			experience TEXT,
			education  TEXT,
			resume_url TEXT,
			avatar_url TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS company_profiles (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id     INTEGER NOT NULL UNIQUE,
			name        TEXT    NOT NULL,
			description TEXT,
			industry    TEXT,
			location    TEXT,
			website     TEXT,
			logo_url    TEXT,
			size        TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS jobs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			company_id   INTEGER NOT NULL,
			title        TEXT    NOT NULL,
			description  TEXT    NOT NULL,
			location     TEXT    NOT NULL,
			type         TEXT    NOT NULL,
			salary       TEXT,
			requirements TEXT,
			benefits     TEXT,
			skills       TEXT    NOT NULL DEFAULT '[]',
			created_at   INTEGER NOT NULL,
			expires_at   INTEGER,
			is_active    INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE INDEX IF NOT EXISTS jobs_company_id ON jobs (company_id)`,
		`CREATE TABLE IF NOT EXISTS applications (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id        INTEGER NOT NULL,
			job_seeker_id INTEGER NOT NULL,
			status        TEXT    NOT NULL,
			cover_letter  TEXT,
			applied_at    INTEGER NOT NULL,
			updated_at    INTEGER NOT NULL,
			UNIQUE (job_id, job_seeker_id)
		)`,
		`CREATE INDEX IF NOT EXISTS applications_job_seeker_id ON applications (job_seeker_id)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id                         INTEGER PRIMARY KEY AUTOINCREMENT,
			from_user_id               INTEGER NOT NULL,
			to_user_id                 INTEGER NOT NULL,
			related_to_application_id  INTEGER,
			content                    TEXT    NOT NULL,
			is_read                    INTEGER NOT NULL DEFAULT 0,
			sent_at                    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS messages_from_user_id ON messages (from_user_id)`,
		`CREATE INDEX IF NOT EXISTS messages_to_user_id ON messages (to_user_id)`,
	},
}

//nolint:gochecknoglobals
var postgresDialect = dialect{
	name:            DriverPostgres,
	serializeWrites: false,
	forUpdate:       " FOR UPDATE",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            BIGSERIAL PRIMARY KEY,
			username      TEXT      NOT NULL UNIQUE,
			email         TEXT      NOT NULL UNIQUE,
			password_hash BYTEA     NOT NULL,
			user_type     TEXT      NOT NULL,
			created_at    BIGINT    NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS job_seeker_profiles (
			id         BIGSERIAL PRIMARY KEY,
			user_id    BIGINT    NOT NULL UNIQUE,
			first_name TEXT      NOT NULL,
			last_name  TEXT      NOT NULL,
			title      TEXT,
			bio        TEXT,
			location   TEXT,
			skills     TEXT      NOT NULL DEFAULT '[]',
			experience TEXT,
			education  TEXT,
			resume_url TEXT,
			avatar_url TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS company_profiles (
			id          BIGSERIAL PRIMARY KEY,
			user_id     BIGINT    NOT NULL UNIQUE,
			name        TEXT      NOT NULL,
			description TEXT,
			industry    TEXT,
			location    TEXT,
			website     TEXT,
			logo_url    TEXT,
			size        TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS jobs (
			id           BIGSERIAL PRIMARY KEY,
			company_id   BIGINT    NOT NULL,
			title        TEXT      NOT NULL,
			description  TEXT      NOT NULL,
			location     TEXT      NOT NULL,
			type         TEXT      NOT NULL,
			salary       TEXT,
			requirements TEXT,
			benefits     TEXT,
			skills       TEXT      NOT NULL DEFAULT '[]',
			created_at   BIGINT    NOT NULL,
			expires_at   BIGINT,
			is_active    BOOLEAN   NOT NULL DEFAULT TRUE
		)`,
		`CREATE INDEX IF NOT EXISTS jobs_company_id ON jobs (company_id)`,
		`CREATE TABLE IF NOT EXISTS applications (
			id            BIGSERIAL PRIMARY KEY,
			job_id        BIGINT    NOT NULL,
			job_seeker_id BIGINT    NOT NULL,
			status        TEXT      NOT NULL,
			cover_letter  TEXT,
			applied_at    BIGINT    NOT NULL,
			updated_at    BIGINT    NOT NULL,
			UNIQUE (job_id, job_seeker_id)
		)`,
		`CREATE INDEX IF NOT EXISTS applications_job_seeker_id ON applications (job_seeker_id)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id                         BIGSERIAL PRIMARY KEY,
			from_user_id               BIGINT    NOT NULL,
			to_user_id                 BIGINT    NOT NULL,
			related_to_application_id  BIGINT,
			content                    TEXT      NOT NULL,
			is_read                    BOOLEAN   NOT NULL DEFAULT FALSE,
			sent_at                    BIGINT    NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS messages_from_user_id ON messages (from_user_id)`,
		`CREATE INDEX IF NOT EXISTS messages_to_user_id ON messages (to_user_id)`,
	},
}

func dialectFor(driverName string) dialect {
	if driverName == DriverPostgres {
		return postgresDialect
	}

	return sqliteDialect
}
