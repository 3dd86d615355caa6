package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/linguloop/backend/internal/models"
)

// QuestionStore is the persistence contract for per-(session, difficulty)
// question sets.
type QuestionStore interface {
	SaveSet(ctx context.Context, sessionID string, difficulty models.Difficulty, questions []models.GeneratedQuestion, shareToken string) error
	FetchSets(ctx context.Context, sessionID string) (map[models.Difficulty]models.QuestionSet, error)
	DeleteSets(ctx context.Context, sessionID string) (int, error)
	DeleteSet(ctx context.Context, sessionID string, difficulty models.Difficulty) error
}

// PresetStore holds the single active preset per session. Put with a nil
// preset clears it.
type PresetStore interface {
	GetPreset(ctx context.Context, sessionID string) (*models.DistributionPreset, error)
	PutPreset(ctx context.Context, sessionID string, preset *models.DistributionPreset) error
}

// Store is the postgres implementation of QuestionStore and PresetStore, plus
// loop lookup and fetch-by-token support.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Question Sets ───────────────────────────────────────

// SaveSet appends a batch's questions to the (session, difficulty) set and
// replaces its share token. All batches of one difficulty write to the same
// row; the last batch to persist owns the token.
func (s *Store) SaveSet(ctx context.Context, sessionID string, difficulty models.Difficulty, questions []models.GeneratedQuestion, shareToken string) error {
	payload, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO question_sets (session_id, difficulty, questions, share_token)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (session_id, difficulty)
		 DO UPDATE SET questions = question_sets.questions || EXCLUDED.questions,
		               share_token = EXCLUDED.share_token,
		               updated_at = NOW()`,
		sessionID, difficulty, payload, shareToken,
	)
	if err != nil {
		return fmt.Errorf("save question set: %w", err)
	}
	return nil
}

func (s *Store) FetchSets(ctx context.Context, sessionID string) (map[models.Difficulty]models.QuestionSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT difficulty, questions, share_token FROM question_sets WHERE session_id = $1`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch question sets: %w", err)
	}
	defer rows.Close()

	sets := make(map[models.Difficulty]models.QuestionSet)
	for rows.Next() {
		var set models.QuestionSet
		var payload []byte
		if err := rows.Scan(&set.Difficulty, &payload, &set.ShareToken); err != nil {
			return nil, fmt.Errorf("scan question set: %w", err)
		}
		if err := json.Unmarshal(payload, &set.Questions); err != nil {
			return nil, fmt.Errorf("decode questions for %s: %w", set.Difficulty, err)
		}
		set.SessionID = sessionID
		sets[set.Difficulty] = set
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch question sets: %w", err)
	}
	return sets, nil
}

// FetchSet loads one (session, difficulty) set. Returns sql.ErrNoRows when
// none exists.
func (s *Store) FetchSet(ctx context.Context, sessionID string, difficulty models.Difficulty) (*models.QuestionSet, error) {
	var set models.QuestionSet
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT difficulty, questions, share_token FROM question_sets
		 WHERE session_id = $1 AND difficulty = $2`,
		sessionID, difficulty,
	).Scan(&set.Difficulty, &payload, &set.ShareToken)
	if err != nil {
		return nil, fmt.Errorf("fetch question set: %w", err)
	}
	if err := json.Unmarshal(payload, &set.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	set.SessionID = sessionID
	return &set, nil
}

func (s *Store) DeleteSets(ctx context.Context, sessionID string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM question_sets WHERE session_id = $1`, sessionID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete question sets: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete question sets: %w", err)
	}
	return int(n), nil
}

func (s *Store) DeleteSet(ctx context.Context, sessionID string, difficulty models.Difficulty) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM question_sets WHERE session_id = $1 AND difficulty = $2`,
		sessionID, difficulty,
	)
	if err != nil {
		return fmt.Errorf("delete question set: %w", err)
	}
	return nil
}

// ── Presets ─────────────────────────────────────────────

func (s *Store) GetPreset(ctx context.Context, sessionID string) (*models.DistributionPreset, error) {
	var p models.DistributionPreset
	err := s.db.QueryRowContext(ctx,
		`SELECT preset_id, name, easy_count, medium_count, hard_count, created_at
		 FROM session_presets WHERE session_id = $1`,
		sessionID,
	).Scan(&p.ID, &p.Name, &p.Distribution.Easy, &p.Distribution.Medium, &p.Distribution.Hard, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preset: %w", err)
	}
	return &p, nil
}

func (s *Store) PutPreset(ctx context.Context, sessionID string, preset *models.DistributionPreset) error {
	if preset == nil {
		_, err := s.db.ExecContext(ctx,
			`DELETE FROM session_presets WHERE session_id = $1`, sessionID,
		)
		if err != nil {
			return fmt.Errorf("clear preset: %w", err)
		}
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_presets (session_id, preset_id, name, easy_count, medium_count, hard_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (session_id)
		 DO UPDATE SET preset_id = EXCLUDED.preset_id, name = EXCLUDED.name,
		               easy_count = EXCLUDED.easy_count, medium_count = EXCLUDED.medium_count,
		               hard_count = EXCLUDED.hard_count, created_at = EXCLUDED.created_at`,
		sessionID, preset.ID, preset.Name,
		preset.Distribution.Easy, preset.Distribution.Medium, preset.Distribution.Hard,
		preset.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("put preset: %w", err)
	}
	return nil
}

// ── Loops ───────────────────────────────────────────────

// GetLoop returns sql.ErrNoRows (wrapped) when the loop does not exist.
func (s *Store) GetLoop(ctx context.Context, loopID string) (*models.TranscriptLoop, error) {
	var loop models.TranscriptLoop
	var segments []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT id, video_title, start_time, end_time, transcript_text, segments
		 FROM transcript_loops WHERE id = $1`,
		loopID,
	).Scan(&loop.ID, &loop.VideoTitle, &loop.StartTime, &loop.EndTime, &loop.TranscriptText, &segments)
	if err != nil {
		return nil, fmt.Errorf("get loop %s: %w", loopID, err)
	}
	if err := json.Unmarshal(segments, &loop.Segments); err != nil {
		return nil, fmt.Errorf("decode loop segments: %w", err)
	}
	return &loop, nil
}

func (s *Store) PutLoop(ctx context.Context, loop *models.TranscriptLoop) error {
	segments, err := json.Marshal(loop.Segments)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO transcript_loops (id, video_title, start_time, end_time, transcript_text, segments)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id)
		 DO UPDATE SET video_title = EXCLUDED.video_title, start_time = EXCLUDED.start_time,
		               end_time = EXCLUDED.end_time, transcript_text = EXCLUDED.transcript_text,
		               segments = EXCLUDED.segments`,
		loop.ID, loop.VideoTitle, loop.StartTime, loop.EndTime, loop.TranscriptText, segments,
	)
	if err != nil {
		return fmt.Errorf("put loop: %w", err)
	}
	return nil
}
