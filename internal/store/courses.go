package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/lox/fairwayforecast/internal/models"
)

const maxSearchLimit = 100

// UpsertCourses inserts or refreshes courses in a single transaction. Courses
// are keyed by name and position.
func (s *Store) UpsertCourses(courses []models.Course, now time.Time) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin course import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO courses (name, latitude, longitude, country, region, source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name, latitude, longitude) DO UPDATE SET
			country = excluded.country,
			region = excluded.region,
			source = excluded.source,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare course upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range courses {
		if _, err := stmt.Exec(c.Name, c.Latitude, c.Longitude, c.Country, c.Region, c.Source, now.Unix()); err != nil {
			return 0, fmt.Errorf("upsert course %q: %w", c.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit course import: %w", err)
	}
	return len(courses), nil
}

// SearchCourses matches query as a case-insensitive substring of the course
// name, optionally restricted to one country, ordered by name.
func (s *Store) SearchCourses(query, country string, limit int) ([]models.Course, error) {
	if limit <= 0 || limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	where := []string{"name LIKE ? ESCAPE '\\'"}
	args := []any{"%" + escapeLike(strings.TrimSpace(query)) + "%"}
	if country != "" {
		where = append(where, "country = ?")
		args = append(args, strings.ToUpper(country))
	}
	args = append(args, limit)

	rows, err := s.db.Query(`
		SELECT id, name, latitude, longitude, country, region, source, updated_at
		FROM courses
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY name COLLATE NOCASE, id
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("search courses: %w", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		var (
			c       models.Course
			updated int64
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Latitude, &c.Longitude, &c.Country, &c.Region, &c.Source, &updated); err != nil {
			return nil, err
		}
		c.UpdatedAt = time.Unix(updated, 0).UTC()
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (s *Store) CountCourses() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM courses").Scan(&n)
	return n, err
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
