package persistence

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/chemverify/chemverify/internal/model"
)

//go:embed migrations
var migrationsFS embed.FS

// PostgresStore is the production Store, backed directly by pgx/v5 with
// golang-migrate applying schema migrations (see DESIGN.md for why it
// bypasses ent's generated client).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore opens a connection pool against cfg, applies pending
// migrations, and returns a ready-to-use store.
func NewPostgresStore(ctx context.Context, cfg Config) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("persistence: parsing pool config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("persistence: opening pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("persistence: pinging database: %w", err)
	}

	if err := runMigrations(cfg); err != nil {
		pool.Close()
		return nil, fmt.Errorf("persistence: running migrations: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func runMigrations(cfg Config) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("creating migration source: %w", err)
	}
	defer sourceDriver.Close()

	db := stdlib.OpenDB(*(pgxStdlibConnConfig(cfg)))
	defer db.Close()

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("creating postgres migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, cfg.Database, dbDriver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// SaveRun persists a completed run and its claims/findings in a single
// transaction.
func (s *PostgresStore) SaveRun(ctx context.Context, run model.Run, claims []model.ExtractedClaim, findings []model.ValidationFinding) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("persistence: beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO runs (id, created_at, mode, status, prompt, generated_output, input_text,
			policy_profile, previous_hash, current_hash, model_name, risk_score)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		run.ID, run.CreatedAt, string(run.Mode), string(run.Status), run.Prompt, run.GeneratedOutput,
		run.InputText, run.PolicyProfile, run.PreviousHash, run.CurrentHash, run.ModelName, run.RiskScore,
	)
	if err != nil {
		return fmt.Errorf("persistence: inserting run: %w", err)
	}

	for _, c := range claims {
		_, err = tx.Exec(ctx, `
			INSERT INTO extracted_claims (id, run_id, kind, raw_text, normalized_value, unit, payload,
				source_locator, entity_key, step_index)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			c.ID, c.RunID, string(c.Kind), c.RawText, c.NormalizedValue, c.Unit, c.Payload,
			c.SourceLocator, c.EntityKey, c.StepIndex,
		)
		if err != nil {
			return fmt.Errorf("persistence: inserting claim %s: %w", c.ID, err)
		}
	}

	for _, f := range findings {
		var kind *string
		if f.Kind != nil {
			k := string(*f.Kind)
			kind = &k
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO validation_findings (id, run_id, claim_id, validator_name, rule_id, rule_version,
				status, message, confidence, kind, payload, evidence_ref, evidence_start_offset,
				evidence_end_offset, evidence_step_index, evidence_entity_key, evidence_snippet)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
			f.ID, f.RunID, f.ClaimID, f.ValidatorName, f.RuleID, f.RuleVersion,
			string(f.Status), f.Message, f.Confidence, kind, f.Payload, f.EvidenceRef,
			f.EvidenceStartOffset, f.EvidenceEndOffset, f.EvidenceStepIndex, f.EvidenceEntityKey, f.EvidenceSnippet,
		)
		if err != nil {
			return fmt.Errorf("persistence: inserting finding %s: %w", f.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("persistence: committing transaction: %w", err)
	}
	return nil
}

// GetRun loads a run by id along with its claims and findings.
func (s *PostgresStore) GetRun(ctx context.Context, id string) (model.Run, []model.ExtractedClaim, []model.ValidationFinding, error) {
	var run model.Run
	row := s.pool.QueryRow(ctx, `
		SELECT id, created_at, mode, status, prompt, generated_output, input_text,
			policy_profile, previous_hash, current_hash, model_name, risk_score
		FROM runs WHERE id = $1`, id)

	var mode, status string
	if err := row.Scan(&run.ID, &run.CreatedAt, &mode, &status, &run.Prompt, &run.GeneratedOutput,
		&run.InputText, &run.PolicyProfile, &run.PreviousHash, &run.CurrentHash, &run.ModelName, &run.RiskScore); err != nil {
		return model.Run{}, nil, nil, ErrNotFound{ID: id}
	}
	run.Mode = model.RunMode(mode)
	run.Status = model.RunStatus(status)

	claims, err := s.loadClaims(ctx, id)
	if err != nil {
		return model.Run{}, nil, nil, err
	}
	findings, err := s.loadFindings(ctx, id)
	if err != nil {
		return model.Run{}, nil, nil, err
	}

	return run, claims, findings, nil
}

func (s *PostgresStore) loadClaims(ctx context.Context, runID string) ([]model.ExtractedClaim, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, run_id, kind, raw_text, normalized_value, unit, payload, source_locator, entity_key, step_index
		FROM extracted_claims WHERE run_id = $1`, runID)
	if err != nil {
		return nil, fmt.Errorf("persistence: querying claims: %w", err)
	}
	defer rows.Close()

	var claims []model.ExtractedClaim
	for rows.Next() {
		var c model.ExtractedClaim
		var kind string
		if err := rows.Scan(&c.ID, &c.RunID, &kind, &c.RawText, &c.NormalizedValue, &c.Unit,
			&c.Payload, &c.SourceLocator, &c.EntityKey, &c.StepIndex); err != nil {
			return nil, fmt.Errorf("persistence: scanning claim: %w", err)
		}
		c.Kind = model.ClaimKind(kind)
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

func (s *PostgresStore) loadFindings(ctx context.Context, runID string) ([]model.ValidationFinding, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, run_id, claim_id, validator_name, rule_id, rule_version, status, message, confidence,
			kind, payload, evidence_ref, evidence_start_offset, evidence_end_offset, evidence_step_index,
			evidence_entity_key, evidence_snippet
		FROM validation_findings WHERE run_id = $1`, runID)
	if err != nil {
		return nil, fmt.Errorf("persistence: querying findings: %w", err)
	}
	defer rows.Close()

	var findings []model.ValidationFinding
	for rows.Next() {
		var f model.ValidationFinding
		var status string
		var kind *string
		if err := rows.Scan(&f.ID, &f.RunID, &f.ClaimID, &f.ValidatorName, &f.RuleID, &f.RuleVersion,
			&status, &f.Message, &f.Confidence, &kind, &f.Payload, &f.EvidenceRef, &f.EvidenceStartOffset,
			&f.EvidenceEndOffset, &f.EvidenceStepIndex, &f.EvidenceEntityKey, &f.EvidenceSnippet); err != nil {
			return nil, fmt.Errorf("persistence: scanning finding: %w", err)
		}
		f.Status = model.Status(status)
		if kind != nil {
			k := model.FindingKind(*kind)
			f.Kind = &k
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

// LatestHash returns the current hash of the most recently created run, or
// hashchain.GenesisHash if the store is empty.
func (s *PostgresStore) LatestHash(ctx context.Context) (string, error) {
	var hash string
	err := s.pool.QueryRow(ctx, `SELECT current_hash FROM runs ORDER BY created_at DESC LIMIT 1`).Scan(&hash)
	if errors.Is(err, context.Canceled) {
		return "", err
	}
	if err != nil {
		return "", nil
	}
	return hash, nil
}
