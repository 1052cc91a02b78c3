package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/marketsmith/marketsmith/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS businesses (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	name        TEXT NOT NULL,
	industry    TEXT NOT NULL DEFAULT '',
	website_url TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_businesses_user_id ON businesses(user_id);

CREATE TABLE IF NOT EXISTS analyses (
	id            TEXT PRIMARY KEY,
	business_id   TEXT NOT NULL REFERENCES businesses(id),
	status        TEXT NOT NULL DEFAULT 'PENDING',
	source_url    TEXT NOT NULL,
	swot          TEXT,
	competitors   TEXT,
	error_message TEXT,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_analyses_business_id ON analyses(business_id);
CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status);

CREATE TABLE IF NOT EXISTS personas (
	id                 TEXT PRIMARY KEY,
	business_id        TEXT NOT NULL REFERENCES businesses(id),
	name               TEXT NOT NULL,
	age_range          TEXT NOT NULL DEFAULT '',
	gender             TEXT NOT NULL DEFAULT '',
	location           TEXT NOT NULL DEFAULT '',
	occupation         TEXT NOT NULL DEFAULT '',
	income_level       TEXT NOT NULL DEFAULT '',
	goals              TEXT NOT NULL DEFAULT '[]',
	pain_points        TEXT NOT NULL DEFAULT '[]',
	motivations        TEXT NOT NULL DEFAULT '[]',
	preferred_channels TEXT NOT NULL DEFAULT '[]',
	description        TEXT NOT NULL DEFAULT '',
	created_at         DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_personas_business_id ON personas(business_id);

CREATE TABLE IF NOT EXISTS plans (
	id                 TEXT PRIMARY KEY,
	business_id        TEXT NOT NULL REFERENCES businesses(id),
	analysis_id        TEXT NOT NULL REFERENCES analyses(id),
	title              TEXT NOT NULL,
	objectives         TEXT NOT NULL DEFAULT '[]',
	target_persona_ids TEXT NOT NULL DEFAULT '[]',
	key_messages       TEXT NOT NULL DEFAULT '[]',
	channels           TEXT NOT NULL DEFAULT '[]',
	kpis               TEXT NOT NULL DEFAULT '[]',
	strategies         TEXT NOT NULL DEFAULT '[]',
	timeline           TEXT NOT NULL DEFAULT '',
	created_at         DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_plans_business_id ON plans(business_id);

CREATE TABLE IF NOT EXISTS content (
	id           TEXT PRIMARY KEY,
	business_id  TEXT NOT NULL REFERENCES businesses(id),
	plan_id      TEXT REFERENCES plans(id),
	content_type TEXT NOT NULL,
	title        TEXT NOT NULL DEFAULT '',
	body         TEXT NOT NULL,
	prompt_used  TEXT NOT NULL DEFAULT '',
	model_used   TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'DRAFT',
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_content_business_id ON content(business_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "sqlite: rows affected for %s %s", kind, id)
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", kind, id)
	}
	return nil
}

func (s *SQLiteStore) CreateBusiness(ctx context.Context, b model.Business) (*model.Business, error) {
	b.ID = uuid.New().String()
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO businesses (id, user_id, name, industry, website_url, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Name, b.Industry, b.WebsiteURL, b.Description, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert business")
	}
	return &b, nil
}

func (s *SQLiteStore) GetBusiness(ctx context.Context, id string) (*model.Business, error) {
	var b model.Business
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, industry, website_url, description, created_at, updated_at FROM businesses WHERE id = ?`,
		id,
	).Scan(&b.ID, &b.UserID, &b.Name, &b.Industry, &b.WebsiteURL, &b.Description, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "business %s", id)
		}
		return nil, eris.Wrapf(err, "sqlite: get business %s", id)
	}
	return &b, nil
}

func (s *SQLiteStore) ListBusinesses(ctx context.Context, userID string) ([]model.Business, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, industry, website_url, description, created_at, updated_at FROM businesses WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list businesses")
	}
	defer rows.Close()

	var out []model.Business
	for rows.Next() {
		var b model.Business
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Industry, &b.WebsiteURL, &b.Description, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan business")
		}
		out = append(out, b)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list businesses iterate")
}

func (s *SQLiteStore) CreateAnalysis(ctx context.Context, businessID, sourceURL string) (*model.Analysis, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, business_id, status, source_url, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, businessID, string(model.StatusPending), sourceURL, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert analysis")
	}

	return &model.Analysis{
		ID:         id,
		BusinessID: businessID,
		Status:     model.StatusPending,
		SourceURL:  sourceURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *SQLiteStore) UpdateAnalysisStatus(ctx context.Context, id string, status model.AnalysisStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update analysis status %s", id)
	}
	return checkRowsAffected(res, "analysis", id)
}

func (s *SQLiteStore) UpdateAnalysisResults(ctx context.Context, id string, swot, competitors model.StructuredResult) error {
	swotArg, err := structuredArg(swot)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal swot")
	}
	compArg, err := structuredArg(competitors)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal competitors")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET swot = ?, competitors = ?, updated_at = ? WHERE id = ?`,
		jsonText(swotArg), jsonText(compArg), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update analysis results %s", id)
	}
	return checkRowsAffected(res, "analysis", id)
}

// jsonText converts a marshaled JSON argument to a TEXT value, keeping SQL
// NULL for absent results.
func jsonText(arg any) any {
	if b, ok := arg.([]byte); ok {
		return string(b)
	}
	return arg
}

func (s *SQLiteStore) FailAnalysis(ctx context.Context, id, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		string(model.StatusFailed), message, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail analysis %s", id)
	}
	return checkRowsAffected(res, "analysis", id)
}

func scanAnalysisRow(scan func(dest ...any) error) (*model.Analysis, error) {
	var a model.Analysis
	var swotJSON, compJSON, errMsg sql.NullString

	if err := scan(&a.ID, &a.BusinessID, &a.Status, &a.SourceURL, &swotJSON, &compJSON, &errMsg, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if swotJSON.Valid {
		if err := a.SWOT.UnmarshalJSON([]byte(swotJSON.String)); err != nil {
			return nil, err
		}
	}
	if compJSON.Valid {
		if err := a.Competitors.UnmarshalJSON([]byte(compJSON.String)); err != nil {
			return nil, err
		}
	}
	if errMsg.Valid {
		a.ErrorMessage = errMsg.String
	}
	return &a, nil
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, id string) (*model.Analysis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, business_id, status, source_url, swot, competitors, error_message, created_at, updated_at FROM analyses WHERE id = ?`,
		id,
	)
	a, err := scanAnalysisRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "analysis %s", id)
		}
		return nil, eris.Wrapf(err, "sqlite: get analysis %s", id)
	}
	return a, nil
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, businessID string) ([]model.Analysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, business_id, status, source_url, swot, competitors, error_message, created_at, updated_at FROM analyses WHERE business_id = ? ORDER BY created_at DESC`,
		businessID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list analyses")
	}
	defer rows.Close()

	var out []model.Analysis
	for rows.Next() {
		a, err := scanAnalysisRow(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan analysis")
		}
		out = append(out, *a)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list analyses iterate")
}

func (s *SQLiteStore) CreatePersona(ctx context.Context, p model.Persona) (*model.Persona, error) {
	p.ID = uuid.New().String()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Normalize()

	goals, _ := json.Marshal(p.Goals)
	pains, _ := json.Marshal(p.PainPoints)
	motivations, _ := json.Marshal(p.Motivations)
	channels, _ := json.Marshal(p.PreferredChannels)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO personas (id, business_id, name, age_range, gender, location, occupation, income_level, goals, pain_points, motivations, preferred_channels, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.BusinessID, p.Name, p.AgeRange, p.Gender, p.Location, p.Occupation, p.IncomeLevel,
		string(goals), string(pains), string(motivations), string(channels), p.Description, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert persona")
	}
	return &p, nil
}

func scanPersonaRow(scan func(dest ...any) error) (*model.Persona, error) {
	var p model.Persona
	var goals, pains, motivations, channels string

	if err := scan(&p.ID, &p.BusinessID, &p.Name, &p.AgeRange, &p.Gender, &p.Location, &p.Occupation, &p.IncomeLevel,
		&goals, &pains, &motivations, &channels, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := scanPersonaLists(&p, []byte(goals), []byte(pains), []byte(motivations), []byte(channels)); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) GetPersona(ctx context.Context, id string) (*model.Persona, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+personaColumns+` FROM personas WHERE id = ?`,
		id,
	)
	p, err := scanPersonaRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "persona %s", id)
		}
		return nil, eris.Wrapf(err, "sqlite: get persona %s", id)
	}
	return p, nil
}

func (s *SQLiteStore) ListPersonas(ctx context.Context, businessID string, ids []string) ([]model.Persona, error) {
	query := `SELECT ` + personaColumns + ` FROM personas WHERE business_id = ?`
	args := []any{businessID}
	if len(ids) > 0 {
		query += ` AND id IN (?` + strings.Repeat(", ?", len(ids)-1) + `)`
		for _, id := range ids {
			args = append(args, id)
		}
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list personas")
	}
	defer rows.Close()

	var out []model.Persona
	for rows.Next() {
		p, err := scanPersonaRow(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan persona")
		}
		out = append(out, *p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list personas iterate")
}

func (s *SQLiteStore) CreatePlan(ctx context.Context, p model.Plan) (*model.Plan, error) {
	p.ID = uuid.New().String()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Normalize()

	objectives, _ := json.Marshal(p.Objectives)
	personaIDs, _ := json.Marshal(p.TargetPersonaIDs)
	messages, _ := json.Marshal(p.KeyMessages)
	channels, _ := json.Marshal(p.Channels)
	kpis, _ := json.Marshal(p.KPIs)
	strategies, _ := json.Marshal(p.Strategies)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO plans (id, business_id, analysis_id, title, objectives, target_persona_ids, key_messages, channels, kpis, strategies, timeline, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.BusinessID, p.AnalysisID, p.Title,
		string(objectives), string(personaIDs), string(messages), string(channels), string(kpis), string(strategies),
		p.Timeline, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert plan")
	}
	return &p, nil
}

func scanPlanRow(scan func(dest ...any) error) (*model.Plan, error) {
	var p model.Plan
	var objectives, personaIDs, messages, channels, kpis, strategies string

	if err := scan(&p.ID, &p.BusinessID, &p.AnalysisID, &p.Title,
		&objectives, &personaIDs, &messages, &channels, &kpis, &strategies,
		&p.Timeline, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := scanPlanLists(&p, []byte(objectives), []byte(personaIDs), []byte(messages), []byte(channels), []byte(kpis), []byte(strategies)); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) GetPlan(ctx context.Context, id string) (*model.Plan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM plans WHERE id = ?`,
		id,
	)
	p, err := scanPlanRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "plan %s", id)
		}
		return nil, eris.Wrapf(err, "sqlite: get plan %s", id)
	}
	return p, nil
}

func (s *SQLiteStore) ListPlans(ctx context.Context, businessID string) ([]model.Plan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+planColumns+` FROM plans WHERE business_id = ? ORDER BY created_at DESC`,
		businessID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list plans")
	}
	defer rows.Close()

	var out []model.Plan
	for rows.Next() {
		p, err := scanPlanRow(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan plan")
		}
		out = append(out, *p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list plans iterate")
}

func (s *SQLiteStore) CreateContent(ctx context.Context, c model.Content) (*model.Content, error) {
	c.ID = uuid.New().String()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = "DRAFT"
	}

	var planID any
	if c.PlanID != "" {
		planID = c.PlanID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO content (id, business_id, plan_id, content_type, title, body, prompt_used, model_used, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.BusinessID, planID, string(c.ContentType), c.Title, c.Body, c.PromptUsed, c.ModelUsed, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert content")
	}
	return &c, nil
}

func (s *SQLiteStore) ListContent(ctx context.Context, businessID string) ([]model.Content, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, business_id, plan_id, content_type, title, body, prompt_used, model_used, status, created_at, updated_at FROM content WHERE business_id = ? ORDER BY created_at DESC`,
		businessID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list content")
	}
	defer rows.Close()

	var out []model.Content
	for rows.Next() {
		var c model.Content
		var planID sql.NullString

		if err := rows.Scan(&c.ID, &c.BusinessID, &planID, &c.ContentType, &c.Title, &c.Body, &c.PromptUsed, &c.ModelUsed, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan content")
		}
		if planID.Valid {
			c.PlanID = planID.String
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list content iterate")
}
