package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/marketsmith/marketsmith/internal/db"
	"github.com/marketsmith/marketsmith/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the pipeline's hot path.
var preparedStatements = map[string]string{
	"insert_analysis":         `INSERT INTO analyses (id, business_id, status, source_url, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
	"update_analysis_status":  `UPDATE analyses SET status = $1, updated_at = $2 WHERE id = $3`,
	"update_analysis_results": `UPDATE analyses SET swot = $1, competitors = $2, updated_at = $3 WHERE id = $4`,
	"get_analysis":            `SELECT id, business_id, status, source_url, swot, competitors, error_message, created_at, updated_at FROM analyses WHERE id = $1`,
	"insert_persona":          `INSERT INTO personas (id, business_id, name, age_range, gender, location, occupation, income_level, goals, pain_points, motivations, preferred_channels, description, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS businesses (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	name        TEXT NOT NULL,
	industry    TEXT,
	website_url TEXT,
	description TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_businesses_user_id ON businesses(user_id);

CREATE TABLE IF NOT EXISTS analyses (
	id            TEXT PRIMARY KEY,
	business_id   TEXT NOT NULL REFERENCES businesses(id),
	status        TEXT NOT NULL DEFAULT 'PENDING',
	source_url    TEXT NOT NULL,
	swot          JSONB,
	competitors   JSONB,
	error_message TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_analyses_business_id ON analyses(business_id);
CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status);

CREATE TABLE IF NOT EXISTS personas (
	id                 TEXT PRIMARY KEY,
	business_id        TEXT NOT NULL REFERENCES businesses(id),
	name               TEXT NOT NULL,
	age_range          TEXT,
	gender             TEXT,
	location           TEXT,
	occupation         TEXT,
	income_level       TEXT,
	goals              JSONB NOT NULL DEFAULT '[]',
	pain_points        JSONB NOT NULL DEFAULT '[]',
	motivations        JSONB NOT NULL DEFAULT '[]',
	preferred_channels JSONB NOT NULL DEFAULT '[]',
	description        TEXT,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_personas_business_id ON personas(business_id);

CREATE TABLE IF NOT EXISTS plans (
	id                 TEXT PRIMARY KEY,
	business_id        TEXT NOT NULL REFERENCES businesses(id),
	analysis_id        TEXT NOT NULL REFERENCES analyses(id),
	title              TEXT NOT NULL,
	objectives         JSONB NOT NULL DEFAULT '[]',
	target_persona_ids JSONB NOT NULL DEFAULT '[]',
	key_messages       JSONB NOT NULL DEFAULT '[]',
	channels           JSONB NOT NULL DEFAULT '[]',
	kpis               JSONB NOT NULL DEFAULT '[]',
	strategies         JSONB NOT NULL DEFAULT '[]',
	timeline           TEXT,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_plans_business_id ON plans(business_id);
CREATE INDEX IF NOT EXISTS idx_plans_analysis_id ON plans(analysis_id);

CREATE TABLE IF NOT EXISTS content (
	id           TEXT PRIMARY KEY,
	business_id  TEXT NOT NULL REFERENCES businesses(id),
	plan_id      TEXT REFERENCES plans(id),
	content_type TEXT NOT NULL,
	title        TEXT,
	body         TEXT NOT NULL,
	prompt_used  TEXT,
	model_used   TEXT,
	status       TEXT NOT NULL DEFAULT 'DRAFT',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_content_business_id ON content(business_id);
CREATE INDEX IF NOT EXISTS idx_content_plan_id ON content(plan_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// structuredArg converts a StructuredResult to a SQL argument. Zero values
// map to SQL NULL rather than JSON null.
func structuredArg(r model.StructuredResult) (any, error) {
	if r.IsZero() {
		return nil, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func scanStructured(raw []byte, dst *model.StructuredResult) error {
	if len(raw) == 0 {
		*dst = model.StructuredResult{}
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func (s *PostgresStore) CreateBusiness(ctx context.Context, b model.Business) (*model.Business, error) {
	b.ID = uuid.New().String()
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO businesses (id, user_id, name, industry, website_url, description, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.UserID, b.Name, b.Industry, b.WebsiteURL, b.Description, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert business")
	}
	return &b, nil
}

func (s *PostgresStore) GetBusiness(ctx context.Context, id string) (*model.Business, error) {
	var b model.Business
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, name, industry, website_url, description, created_at, updated_at FROM businesses WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.UserID, &b.Name, &b.Industry, &b.WebsiteURL, &b.Description, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "business %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get business %s", id)
	}
	return &b, nil
}

func (s *PostgresStore) ListBusinesses(ctx context.Context, userID string) ([]model.Business, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, industry, website_url, description, created_at, updated_at FROM businesses WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list businesses")
	}
	defer rows.Close()

	var out []model.Business
	for rows.Next() {
		var b model.Business
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Industry, &b.WebsiteURL, &b.Description, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan business")
		}
		out = append(out, b)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list businesses iterate")
}

func (s *PostgresStore) CreateAnalysis(ctx context.Context, businessID, sourceURL string) (*model.Analysis, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO analyses (id, business_id, status, source_url, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, businessID, string(model.StatusPending), sourceURL, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert analysis")
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

func (s *PostgresStore) UpdateAnalysisStatus(ctx context.Context, id string, status model.AnalysisStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analyses SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update analysis status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "analysis %s", id)
	}
	return nil
}

func (s *PostgresStore) UpdateAnalysisResults(ctx context.Context, id string, swot, competitors model.StructuredResult) error {
	swotArg, err := structuredArg(swot)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal swot")
	}
	compArg, err := structuredArg(competitors)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal competitors")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE analyses SET swot = $1, competitors = $2, updated_at = $3 WHERE id = $4`,
		swotArg, compArg, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update analysis results %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "analysis %s", id)
	}
	return nil
}

func (s *PostgresStore) FailAnalysis(ctx context.Context, id, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analyses SET status = $1, error_message = $2, updated_at = $3 WHERE id = $4`,
		string(model.StatusFailed), message, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail analysis %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "analysis %s", id)
	}
	return nil
}

func (s *PostgresStore) GetAnalysis(ctx context.Context, id string) (*model.Analysis, error) {
	var a model.Analysis
	var swotJSON, compJSON []byte
	var errMsg *string

	err := s.pool.QueryRow(ctx,
		`SELECT id, business_id, status, source_url, swot, competitors, error_message, created_at, updated_at FROM analyses WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.BusinessID, &a.Status, &a.SourceURL, &swotJSON, &compJSON, &errMsg, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "analysis %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get analysis %s", id)
	}

	if err := scanStructured(swotJSON, &a.SWOT); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal swot")
	}
	if err := scanStructured(compJSON, &a.Competitors); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal competitors")
	}
	if errMsg != nil {
		a.ErrorMessage = *errMsg
	}
	return &a, nil
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, businessID string) ([]model.Analysis, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, business_id, status, source_url, swot, competitors, error_message, created_at, updated_at FROM analyses WHERE business_id = $1 ORDER BY created_at DESC`,
		businessID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list analyses")
	}
	defer rows.Close()

	var out []model.Analysis
	for rows.Next() {
		var a model.Analysis
		var swotJSON, compJSON []byte
		var errMsg *string

		if err := rows.Scan(&a.ID, &a.BusinessID, &a.Status, &a.SourceURL, &swotJSON, &compJSON, &errMsg, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan analysis")
		}
		if err := scanStructured(swotJSON, &a.SWOT); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal swot")
		}
		if err := scanStructured(compJSON, &a.Competitors); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal competitors")
		}
		if errMsg != nil {
			a.ErrorMessage = *errMsg
		}
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list analyses iterate")
}

func (s *PostgresStore) CreatePersona(ctx context.Context, p model.Persona) (*model.Persona, error) {
	p.ID = uuid.New().String()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Normalize()

	goals, _ := json.Marshal(p.Goals)
	pains, _ := json.Marshal(p.PainPoints)
	motivations, _ := json.Marshal(p.Motivations)
	channels, _ := json.Marshal(p.PreferredChannels)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO personas (id, business_id, name, age_range, gender, location, occupation, income_level, goals, pain_points, motivations, preferred_channels, description, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		p.ID, p.BusinessID, p.Name, p.AgeRange, p.Gender, p.Location, p.Occupation, p.IncomeLevel,
		goals, pains, motivations, channels, p.Description, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert persona")
	}
	return &p, nil
}

func scanPersonaLists(p *model.Persona, goals, pains, motivations, channels []byte) error {
	if err := json.Unmarshal(goals, &p.Goals); err != nil {
		return err
	}
	if err := json.Unmarshal(pains, &p.PainPoints); err != nil {
		return err
	}
	if err := json.Unmarshal(motivations, &p.Motivations); err != nil {
		return err
	}
	if err := json.Unmarshal(channels, &p.PreferredChannels); err != nil {
		return err
	}
	p.Normalize()
	return nil
}

const personaColumns = `id, business_id, name, age_range, gender, location, occupation, income_level, goals, pain_points, motivations, preferred_channels, description, created_at, updated_at`

func (s *PostgresStore) GetPersona(ctx context.Context, id string) (*model.Persona, error) {
	var p model.Persona
	var goals, pains, motivations, channels []byte

	err := s.pool.QueryRow(ctx,
		`SELECT `+personaColumns+` FROM personas WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.BusinessID, &p.Name, &p.AgeRange, &p.Gender, &p.Location, &p.Occupation, &p.IncomeLevel,
		&goals, &pains, &motivations, &channels, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "persona %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get persona %s", id)
	}
	if err := scanPersonaLists(&p, goals, pains, motivations, channels); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal persona lists")
	}
	return &p, nil
}

func (s *PostgresStore) ListPersonas(ctx context.Context, businessID string, ids []string) ([]model.Persona, error) {
	query := `SELECT ` + personaColumns + ` FROM personas WHERE business_id = $1`
	args := []any{businessID}
	if len(ids) > 0 {
		query += ` AND id = ANY($2)`
		args = append(args, ids)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list personas")
	}
	defer rows.Close()

	var out []model.Persona
	for rows.Next() {
		var p model.Persona
		var goals, pains, motivations, channels []byte

		if err := rows.Scan(&p.ID, &p.BusinessID, &p.Name, &p.AgeRange, &p.Gender, &p.Location, &p.Occupation, &p.IncomeLevel,
			&goals, &pains, &motivations, &channels, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan persona")
		}
		if err := scanPersonaLists(&p, goals, pains, motivations, channels); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal persona lists")
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list personas iterate")
}

const planColumns = `id, business_id, analysis_id, title, objectives, target_persona_ids, key_messages, channels, kpis, strategies, timeline, created_at, updated_at`

func (s *PostgresStore) CreatePlan(ctx context.Context, p model.Plan) (*model.Plan, error) {
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

	_, err := s.pool.Exec(ctx,
		`INSERT INTO plans (id, business_id, analysis_id, title, objectives, target_persona_ids, key_messages, channels, kpis, strategies, timeline, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.BusinessID, p.AnalysisID, p.Title,
		objectives, personaIDs, messages, channels, kpis, strategies,
		p.Timeline, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert plan")
	}
	return &p, nil
}

func scanPlanLists(p *model.Plan, objectives, personaIDs, messages, channels, kpis, strategies []byte) error {
	for _, pair := range []struct {
		raw []byte
		dst any
	}{
		{objectives, &p.Objectives},
		{personaIDs, &p.TargetPersonaIDs},
		{messages, &p.KeyMessages},
		{channels, &p.Channels},
		{kpis, &p.KPIs},
		{strategies, &p.Strategies},
	} {
		if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
			return err
		}
	}
	p.Normalize()
	return nil
}

func (s *PostgresStore) GetPlan(ctx context.Context, id string) (*model.Plan, error) {
	var p model.Plan
	var objectives, personaIDs, messages, channels, kpis, strategies []byte

	err := s.pool.QueryRow(ctx,
		`SELECT `+planColumns+` FROM plans WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.BusinessID, &p.AnalysisID, &p.Title,
		&objectives, &personaIDs, &messages, &channels, &kpis, &strategies,
		&p.Timeline, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "plan %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get plan %s", id)
	}
	if err := scanPlanLists(&p, objectives, personaIDs, messages, channels, kpis, strategies); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal plan lists")
	}
	return &p, nil
}

func (s *PostgresStore) ListPlans(ctx context.Context, businessID string) ([]model.Plan, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+planColumns+` FROM plans WHERE business_id = $1 ORDER BY created_at DESC`,
		businessID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list plans")
	}
	defer rows.Close()

	var out []model.Plan
	for rows.Next() {
		var p model.Plan
		var objectives, personaIDs, messages, channels, kpis, strategies []byte

		if err := rows.Scan(&p.ID, &p.BusinessID, &p.AnalysisID, &p.Title,
			&objectives, &personaIDs, &messages, &channels, &kpis, &strategies,
			&p.Timeline, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan plan")
		}
		if err := scanPlanLists(&p, objectives, personaIDs, messages, channels, kpis, strategies); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal plan lists")
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list plans iterate")
}

func (s *PostgresStore) CreateContent(ctx context.Context, c model.Content) (*model.Content, error) {
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

	_, err := s.pool.Exec(ctx,
		`INSERT INTO content (id, business_id, plan_id, content_type, title, body, prompt_used, model_used, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.BusinessID, planID, string(c.ContentType), c.Title, c.Body, c.PromptUsed, c.ModelUsed, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert content")
	}
	return &c, nil
}

func (s *PostgresStore) ListContent(ctx context.Context, businessID string) ([]model.Content, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, business_id, plan_id, content_type, title, body, prompt_used, model_used, status, created_at, updated_at FROM content WHERE business_id = $1 ORDER BY created_at DESC`,
		businessID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list content")
	}
	defer rows.Close()

	var out []model.Content
	for rows.Next() {
		var c model.Content
		var planID *string

		if err := rows.Scan(&c.ID, &c.BusinessID, &planID, &c.ContentType, &c.Title, &c.Body, &c.PromptUsed, &c.ModelUsed, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan content")
		}
		if planID != nil {
			c.PlanID = *planID
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list content iterate")
}
