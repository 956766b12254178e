package db

const schemaSQL = `
CREATE TABLE IF NOT EXISTS tailored_snapshots (
    id            UUID PRIMARY KEY,
    session_id    UUID NOT NULL,
    job_title     TEXT NOT NULL DEFAULT '',
    company       TEXT NOT NULL DEFAULT '',
    summary       TEXT NOT NULL DEFAULT '',
    skills        JSONB NOT NULL DEFAULT '[]',
    roles         JSONB NOT NULL DEFAULT '[]',
    ats           JSONB,
    bullet_total  INTEGER NOT NULL DEFAULT 0,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_tailored_snapshots_created_at ON tailored_snapshots (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_tailored_snapshots_session ON tailored_snapshots (session_id);

CREATE TABLE IF NOT EXISTS bullet_feedback (
    id            BIGSERIAL PRIMARY KEY,
    session_id    UUID NOT NULL,
    role_key      TEXT NOT NULL,
    bullet_index  INTEGER NOT NULL CHECK (bullet_index >= 0),
    source        TEXT NOT NULL,
    text          TEXT NOT NULL,
    vote          TEXT NOT NULL CHECK (vote IN ('up', 'down')),
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_bullet_feedback_session ON bullet_feedback (session_id);
`
