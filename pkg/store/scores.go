package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layouts used for the date and time columns of UserDailyScore. Start
// times keep milliseconds so that a session and its replacement started in
// the same second are distinct rows.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05.000"
)

// DailyRecord is one finished study session.
type DailyRecord struct {
	UserName  string
	ScoreDate time.Time
	StartTime time.Time
	StudyTime time.Duration
	Subject   string
	Location  string
	Score     float64
}

// TotalScore aggregates every recorded session of a user.
type TotalScore struct {
	UserName   string
	TotalScore float64
	AvgScore   float64
	TotalCount int
}

// FormatStudyTime renders d as HH:MM:SS. Hours are not wrapped at 24.
func FormatStudyTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// InsertDaily stores rec and folds its score into the user's TotalScore in
// the same transaction.
func (s *Store) InsertDaily(ctx context.Context, rec DailyRecord) error {
	if strings.TrimSpace(rec.UserName) == "" {
		return fmt.Errorf("user name is required")
	}
	if rec.Subject == "" || rec.Location == "" {
		return fmt.Errorf("subject and location are required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO UserDailyScore (user_name, score_date, start_time, study_time, subject, location, score)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.UserName,
		rec.ScoreDate.UTC().Format(DateLayout),
		rec.StartTime.UTC().Format(TimeLayout),
		FormatStudyTime(rec.StudyTime),
		rec.Subject,
		rec.Location,
		rec.Score,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("daily score for %s: %w", rec.UserName, ErrDuplicate)
		}
		return fmt.Errorf("insert daily score: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO TotalScore (user_name, total_score, avg_score, total_cnt) VALUES (?, ?, ?, 1)
		 ON CONFLICT(user_name) DO UPDATE SET
		     total_score = total_score + excluded.total_score,
		     avg_score = (total_score + excluded.total_score) / (total_cnt + 1),
		     total_cnt = total_cnt + 1`,
		rec.UserName, rec.Score, rec.Score,
	)
	if err != nil {
		return fmt.Errorf("update total score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListDaily returns the sessions of user in insertion order.
func (s *Store) ListDaily(ctx context.Context, user string) ([]DailyRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT user_name, score_date, start_time, study_time, subject, location, score
		 FROM UserDailyScore WHERE user_name = ? ORDER BY id`, user)
	if err != nil {
		return nil, fmt.Errorf("select daily scores: %w", err)
	}
	defer rows.Close()

	var out []DailyRecord
	for rows.Next() {
		var (
			rec                  DailyRecord
			date, start, elapsed string
		)
		if err := rows.Scan(&rec.UserName, &date, &start, &elapsed, &rec.Subject, &rec.Location, &rec.Score); err != nil {
			return nil, fmt.Errorf("scan daily score: %w", err)
		}
		if rec.ScoreDate, err = time.Parse(DateLayout, date); err != nil {
			return nil, fmt.Errorf("parse score_date %q: %w", date, err)
		}
		if rec.StartTime, err = time.Parse(TimeLayout, start); err != nil {
			return nil, fmt.Errorf("parse start_time %q: %w", start, err)
		}
		if rec.StudyTime, err = parseStudyTime(elapsed); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily scores: %w", err)
	}
	return out, nil
}

// GetTotalScore returns the aggregate of user.
func (s *Store) GetTotalScore(ctx context.Context, user string) (TotalScore, error) {
	var ts TotalScore
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT user_name, total_score, avg_score, total_cnt FROM TotalScore WHERE user_name = ?`, user)
	if err := row.Scan(&ts.UserName, &ts.TotalScore, &ts.AvgScore, &ts.TotalCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ts, fmt.Errorf("total score of %s: %w", user, ErrNotFound)
		}
		return ts, fmt.Errorf("select total score: %w", err)
	}
	return ts, nil
}

func parseStudyTime(s string) (time.Duration, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		return 0, fmt.Errorf("parse study_time %q: %w", s, err)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
}
