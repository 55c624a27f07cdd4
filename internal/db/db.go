package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	database, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(database); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return database, nil
}

func runMigrations(database *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE
        );`,
		`CREATE TABLE IF NOT EXISTS groups (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            owner_id INT NOT NULL REFERENCES users(id),
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS group_members (
            group_id INT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
            user_id INT NOT NULL REFERENCES users(id),
            role TEXT NOT NULL DEFAULT 'Member',
            PRIMARY KEY(group_id, user_id)
        );`,
		`CREATE TABLE IF NOT EXISTS polls (
            id SERIAL PRIMARY KEY,
            group_id INT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
            creator_id INT NOT NULL REFERENCES users(id),
            question TEXT NOT NULL,
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS poll_options (
            id SERIAL PRIMARY KEY,
            poll_id INT NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
            option_text TEXT NOT NULL,
            vote_count BIGINT NOT NULL DEFAULT 0
        );`,
		`CREATE TABLE IF NOT EXISTS group_messages (
            id SERIAL PRIMARY KEY,
            group_id INT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
            sender_id INT NOT NULL REFERENCES users(id),
            content TEXT NOT NULL,
            message_type TEXT NOT NULL DEFAULT 'TEXT',
            poll_id INT REFERENCES polls(id) ON DELETE SET NULL,
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS message_replies (
            id SERIAL PRIMARY KEY,
            reply_message_id INT NOT NULL UNIQUE REFERENCES group_messages(id) ON DELETE CASCADE,
            original_message_id INT NOT NULL REFERENCES group_messages(id) ON DELETE CASCADE,
            replier_id INT NOT NULL REFERENCES users(id)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_message_replies_original ON message_replies(original_message_id);`,
		`CREATE TABLE IF NOT EXISTS pinned_messages (
            id SERIAL PRIMARY KEY,
            group_id INT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
            message_id INT NOT NULL REFERENCES group_messages(id) ON DELETE CASCADE,
            pinned_by INT NOT NULL REFERENCES users(id),
            pinned_at TIMESTAMPTZ DEFAULT NOW(),
            UNIQUE(group_id, message_id)
        );`,
		`CREATE TABLE IF NOT EXISTS notifications (
            id SERIAL PRIMARY KEY,
            user_id INT NOT NULL REFERENCES users(id),
            title TEXT,
            message TEXT NOT NULL,
            type TEXT NOT NULL,
            is_read BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ DEFAULT NOW(),
            related_entity_id INT,
            related_entity_type TEXT
        );`,
		`CREATE TABLE IF NOT EXISTS calendar_events (
            id SERIAL PRIMARY KEY,
            group_id INT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
            created_by INT NOT NULL REFERENCES users(id),
            topic TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            start_time TIMESTAMPTZ NOT NULL,
            end_time TIMESTAMPTZ NOT NULL,
            location TEXT NOT NULL DEFAULT '',
            meeting_link TEXT NOT NULL DEFAULT '',
            organizer_name TEXT NOT NULL DEFAULT '',
            session_type TEXT NOT NULL,
            passcode TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'ONGOING',
            created_at TIMESTAMPTZ,
            reminder_sent BOOLEAN NOT NULL DEFAULT FALSE,
            reminder_1_hour_sent BOOLEAN NOT NULL DEFAULT FALSE,
            reminder_10_min_sent BOOLEAN NOT NULL DEFAULT FALSE,
            reminder_1_min_sent BOOLEAN NOT NULL DEFAULT FALSE
        );`,
		`CREATE INDEX IF NOT EXISTS idx_calendar_events_start_time ON calendar_events(start_time);`,
	}

	for _, m := range migrations {
		if _, err := database.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
