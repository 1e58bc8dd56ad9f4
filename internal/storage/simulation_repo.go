package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"legisense/internal/models"
	"legisense/internal/simulation"
)

// SimulationSession is a persisted simulation with its child rows hydrated.
type SimulationSession struct {
	SessionID  string                `json:"session_id"`
	DocumentID string                `json:"document_id"`
	CreatedAt  time.Time             `json:"created_at"`
	Data       simulation.Extraction `json:"data"`
}

type SimulationRepo struct {
	db *DB
}

func NewSimulationRepo(db *DB) *SimulationRepo {
	return &SimulationRepo{db: db}
}

// CreateSession persists an extraction as one session plus its child rows in
// a single transaction. Strings are clipped to the column widths so an
// overlong model answer cannot fail the insert.
func (r *SimulationRepo) CreateSession(ctx context.Context, documentID string, ex simulation.Extraction) (string, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin simulation tx: %w", err)
	}
	defer tx.Rollback(ctx)

	params := ex.Session.Parameters
	if params == nil {
		params = map[string]any{}
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("marshal session parameters: %w", err)
	}

	var sessionID string
	err = tx.QueryRow(ctx, `
INSERT INTO simulation_sessions (document_id, title, scenario, jurisdiction, jurisdiction_note, parameters)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text`,
		documentID, clip(ex.Session.Title, 255), clip(ex.Session.Scenario, 32),
		clip(ex.Session.Jurisdiction, 128), ex.Session.JurisdictionNote, paramsJSON).Scan(&sessionID)
	if err != nil {
		return "", fmt.Errorf("insert simulation session: %w", err)
	}

	for i, n := range ex.Timeline {
		risks, err := json.Marshal(emptyIfNil(n.Risks))
		if err != nil {
			return "", fmt.Errorf("marshal timeline risks: %w", err)
		}
		_, err = tx.Exec(ctx, `
INSERT INTO sim_timeline_nodes (session_id, position, node_order, title, description, detailed_description, risks)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			sessionID, i, n.Order, clip(n.Title, 255), clip(n.Description, 512), n.DetailedDescription, risks)
		if err != nil {
			return "", fmt.Errorf("insert timeline node: %w", err)
		}
	}
	for i, row := range ex.PenaltyForecast {
		_, err = tx.Exec(ctx, `
INSERT INTO sim_penalty_forecast (session_id, position, label, base_amount, penalty_amount, interest_amount, total_amount)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			sessionID, i, clip(row.Label, 64), row.BaseAmount, row.PenaltyAmount, row.InterestAmount, row.TotalAmount)
		if err != nil {
			return "", fmt.Errorf("insert penalty forecast row: %w", err)
		}
	}
	for i, c := range ex.ExitComparisons {
		_, err = tx.Exec(ctx, `
INSERT INTO sim_exit_comparisons (session_id, position, label, penalty_text, risk_level, benefits_lost)
VALUES ($1, $2, $3, $4, $5, $6)`,
			sessionID, i, clip(c.Label, 128), clip(c.PenaltyText, 64), clip(c.RiskLevel, 16), clip(c.BenefitsLost, 128))
		if err != nil {
			return "", fmt.Errorf("insert exit comparison: %w", err)
		}
	}
	for i, n := range ex.Narratives {
		keyPoints, err := json.Marshal(emptyIfNil(n.KeyPoints))
		if err != nil {
			return "", fmt.Errorf("marshal narrative key points: %w", err)
		}
		impact, err := json.Marshal(emptyIfNil(n.FinancialImpact))
		if err != nil {
			return "", fmt.Errorf("marshal narrative financial impact: %w", err)
		}
		_, err = tx.Exec(ctx, `
INSERT INTO sim_narratives (session_id, position, title, subtitle, severity, narrative, key_points, financial_impact)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			sessionID, i, clip(n.Title, 255), clip(n.Subtitle, 255), clip(n.Severity, 16), n.Narrative, keyPoints, impact)
		if err != nil {
			return "", fmt.Errorf("insert narrative: %w", err)
		}
	}
	for i, p := range ex.LongTerm {
		_, err = tx.Exec(ctx, `
INSERT INTO sim_long_term_points (session_id, position, label, description, point_index, value)
VALUES ($1, $2, $3, $4, $5, $6)`,
			sessionID, i, clip(p.Label, 64), clip(p.Description, 255), p.Index, p.Value)
		if err != nil {
			return "", fmt.Errorf("insert long term point: %w", err)
		}
	}
	for i, a := range ex.RiskAlerts {
		_, err = tx.Exec(ctx, `
INSERT INTO sim_risk_alerts (session_id, position, level, message)
VALUES ($1, $2, $3, $4)`,
			sessionID, i, clip(a.Level, 16), clip(a.Message, 512))
		if err != nil {
			return "", fmt.Errorf("insert risk alert: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit simulation tx: %w", err)
	}
	return sessionID, nil
}

func (r *SimulationRepo) GetSession(ctx context.Context, sessionID string) (SimulationSession, error) {
	var (
		s          SimulationSession
		paramsJSON []byte
	)
	err := r.db.Pool.QueryRow(ctx, `
SELECT id::text, document_id::text, title, scenario, jurisdiction, jurisdiction_note, parameters, created_at
FROM simulation_sessions
WHERE id=$1`, sessionID).
		Scan(&s.SessionID, &s.DocumentID, &s.Data.Session.Title, &s.Data.Session.Scenario,
			&s.Data.Session.Jurisdiction, &s.Data.Session.JurisdictionNote, &paramsJSON, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SimulationSession{}, ErrNotFound
	}
	if err != nil {
		return SimulationSession{}, fmt.Errorf("get simulation session: %w", err)
	}
	if err := json.Unmarshal(paramsJSON, &s.Data.Session.Parameters); err != nil {
		return SimulationSession{}, fmt.Errorf("decode session parameters: %w", err)
	}

	s.Data.Timeline = []simulation.TimelineNode{}
	s.Data.PenaltyForecast = []simulation.PenaltyForecastRow{}
	s.Data.ExitComparisons = []simulation.ExitComparison{}
	s.Data.Narratives = []simulation.Narrative{}
	s.Data.LongTerm = []simulation.LongTermPoint{}
	s.Data.RiskAlerts = []simulation.RiskAlert{}

	rows, err := r.db.Pool.Query(ctx, `
SELECT node_order, title, description, detailed_description, risks
FROM sim_timeline_nodes WHERE session_id=$1 ORDER BY position`, sessionID)
	if err != nil {
		return SimulationSession{}, fmt.Errorf("list timeline nodes: %w", err)
	}
	for rows.Next() {
		var (
			n     simulation.TimelineNode
			risks []byte
		)
		if err := rows.Scan(&n.Order, &n.Title, &n.Description, &n.DetailedDescription, &risks); err != nil {
			rows.Close()
			return SimulationSession{}, fmt.Errorf("scan timeline node: %w", err)
		}
		if err := json.Unmarshal(risks, &n.Risks); err != nil {
			rows.Close()
			return SimulationSession{}, fmt.Errorf("decode timeline risks: %w", err)
		}
		s.Data.Timeline = append(s.Data.Timeline, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return SimulationSession{}, fmt.Errorf("iterate timeline nodes: %w", err)
	}

	rows, err = r.db.Pool.Query(ctx, `
SELECT label, base_amount, penalty_amount, interest_amount, total_amount
FROM sim_penalty_forecast WHERE session_id=$1 ORDER BY position`, sessionID)
	if err != nil {
		return SimulationSession{}, fmt.Errorf("list penalty forecast: %w", err)
	}
	for rows.Next() {
		var p simulation.PenaltyForecastRow
		if err := rows.Scan(&p.Label, &p.BaseAmount, &p.PenaltyAmount, &p.InterestAmount, &p.TotalAmount); err != nil {
			rows.Close()
			return SimulationSession{}, fmt.Errorf("scan penalty forecast row: %w", err)
		}
		s.Data.PenaltyForecast = append(s.Data.PenaltyForecast, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return SimulationSession{}, fmt.Errorf("iterate penalty forecast: %w", err)
	}

	rows, err = r.db.Pool.Query(ctx, `
SELECT label, penalty_text, risk_level, benefits_lost
FROM sim_exit_comparisons WHERE session_id=$1 ORDER BY position`, sessionID)
	if err != nil {
		return SimulationSession{}, fmt.Errorf("list exit comparisons: %w", err)
	}
	for rows.Next() {
		var c simulation.ExitComparison
		if err := rows.Scan(&c.Label, &c.PenaltyText, &c.RiskLevel, &c.BenefitsLost); err != nil {
			rows.Close()
			return SimulationSession{}, fmt.Errorf("scan exit comparison: %w", err)
		}
		s.Data.ExitComparisons = append(s.Data.ExitComparisons, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return SimulationSession{}, fmt.Errorf("iterate exit comparisons: %w", err)
	}

	rows, err = r.db.Pool.Query(ctx, `
SELECT title, subtitle, severity, narrative, key_points, financial_impact
FROM sim_narratives WHERE session_id=$1 ORDER BY position`, sessionID)
	if err != nil {
		return SimulationSession{}, fmt.Errorf("list narratives: %w", err)
	}
	for rows.Next() {
		var (
			n                 simulation.Narrative
			keyPoints, impact []byte
		)
		if err := rows.Scan(&n.Title, &n.Subtitle, &n.Severity, &n.Narrative, &keyPoints, &impact); err != nil {
			rows.Close()
			return SimulationSession{}, fmt.Errorf("scan narrative: %w", err)
		}
		if err := json.Unmarshal(keyPoints, &n.KeyPoints); err != nil {
			rows.Close()
			return SimulationSession{}, fmt.Errorf("decode narrative key points: %w", err)
		}
		if err := json.Unmarshal(impact, &n.FinancialImpact); err != nil {
			rows.Close()
			return SimulationSession{}, fmt.Errorf("decode narrative financial impact: %w", err)
		}
		s.Data.Narratives = append(s.Data.Narratives, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return SimulationSession{}, fmt.Errorf("iterate narratives: %w", err)
	}

	rows, err = r.db.Pool.Query(ctx, `
SELECT label, description, point_index, value
FROM sim_long_term_points WHERE session_id=$1 ORDER BY position`, sessionID)
	if err != nil {
		return SimulationSession{}, fmt.Errorf("list long term points: %w", err)
	}
	for rows.Next() {
		var p simulation.LongTermPoint
		if err := rows.Scan(&p.Label, &p.Description, &p.Index, &p.Value); err != nil {
			rows.Close()
			return SimulationSession{}, fmt.Errorf("scan long term point: %w", err)
		}
		s.Data.LongTerm = append(s.Data.LongTerm, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return SimulationSession{}, fmt.Errorf("iterate long term points: %w", err)
	}

	rows, err = r.db.Pool.Query(ctx, `
SELECT level, message
FROM sim_risk_alerts WHERE session_id=$1 ORDER BY position`, sessionID)
	if err != nil {
		return SimulationSession{}, fmt.Errorf("list risk alerts: %w", err)
	}
	for rows.Next() {
		var a simulation.RiskAlert
		if err := rows.Scan(&a.Level, &a.Message); err != nil {
			rows.Close()
			return SimulationSession{}, fmt.Errorf("scan risk alert: %w", err)
		}
		s.Data.RiskAlerts = append(s.Data.RiskAlerts, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return SimulationSession{}, fmt.Errorf("iterate risk alerts: %w", err)
	}

	return s, nil
}

func (r *SimulationRepo) ListByDocument(ctx context.Context, documentID string) ([]models.SimulationSessionSummary, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT id::text, title, scenario, created_at
FROM simulation_sessions
WHERE document_id=$1
ORDER BY created_at DESC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list simulation sessions: %w", err)
	}
	defer rows.Close()
	out := make([]models.SimulationSessionSummary, 0)
	for rows.Next() {
		var s models.SimulationSessionSummary
		if err := rows.Scan(&s.SessionID, &s.Title, &s.Scenario, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan simulation session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// LatestSessionID returns the newest session for a document, or ErrNotFound.
func (r *SimulationRepo) LatestSessionID(ctx context.Context, documentID string) (string, error) {
	var id string
	err := r.db.Pool.QueryRow(ctx, `
SELECT id::text FROM simulation_sessions
WHERE document_id=$1
ORDER BY created_at DESC
LIMIT 1`, documentID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("latest simulation session: %w", err)
	}
	return id, nil
}

// UpsertTranslation stores a translated simulation payload, idempotent on
// (session_id, language).
func (r *SimulationRepo) UpsertTranslation(ctx context.Context, sessionID, language string, ex simulation.Extraction) error {
	payload, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("marshal simulation translation: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO simulation_translations (session_id, language, payload)
VALUES ($1, $2, $3)
ON CONFLICT (session_id, language)
DO UPDATE SET
  payload = EXCLUDED.payload,
  updated_at = NOW()`,
		sessionID, language, payload)
	if err != nil {
		return fmt.Errorf("upsert simulation translation: %w", err)
	}
	return nil
}

func (r *SimulationRepo) ListTranslationLanguages(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT language FROM simulation_translations
WHERE session_id=$1
ORDER BY language`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list simulation translation languages: %w", err)
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			return nil, fmt.Errorf("scan simulation translation language: %w", err)
		}
		out = append(out, lang)
	}
	return out, rows.Err()
}

func (r *SimulationRepo) GetTranslation(ctx context.Context, sessionID, language string) (simulation.Extraction, error) {
	var payload []byte
	err := r.db.Pool.QueryRow(ctx, `
SELECT payload FROM simulation_translations
WHERE session_id=$1 AND language=$2`, sessionID, language).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return simulation.Extraction{}, ErrNotFound
	}
	if err != nil {
		return simulation.Extraction{}, fmt.Errorf("get simulation translation: %w", err)
	}
	var ex simulation.Extraction
	if err := json.Unmarshal(payload, &ex); err != nil {
		return simulation.Extraction{}, fmt.Errorf("decode simulation translation: %w", err)
	}
	return ex, nil
}

func emptyIfNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Clip on a rune boundary so multibyte text stays valid.
	runes := []rune(s)
	for len(string(runes)) > max {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}
