package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lox/fairwayforecast/internal/metrics"
	"github.com/lox/fairwayforecast/internal/models"
)

// CourseWriter is the persistence the importer needs; *store.Store satisfies it.
type CourseWriter interface {
	UpsertCourses(courses []models.Course, now time.Time) (int, error)
	RecordIngestRun(run models.IngestRun) (int64, error)
}

// FileOrigin derives country and region from a dataset path: "gb.json" is
// Great Britain, "us/TX.json" is Texas. "custom.json" carries no country.
func FileOrigin(path string) (country, region string) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parent := filepath.Base(filepath.Dir(path))

	if isCountryCode(parent) && len(base) > 0 && base != "custom" {
		return strings.ToUpper(parent), strings.ToUpper(base)
	}
	if isCountryCode(base) {
		return strings.ToUpper(base), ""
	}
	return "", ""
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// ParseCourses reads a dataset of [name, lat, lon, region] rows. Rows with no
// name or an impossible position are skipped and counted.
func ParseCourses(r io.Reader, source string) ([]models.Course, int, error) {
	var rows [][]any
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", source, err)
	}

	country, fileRegion := FileOrigin(source)
	courses := make([]models.Course, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		c, ok := parseCourseRow(row)
		if !ok {
			skipped++
			continue
		}
		c.Source = source
		c.Country = country
		if c.Region == "" {
			c.Region = fileRegion
		}
		if c.Country == "" && isCountryCode(c.Region) {
			c.Country = strings.ToUpper(c.Region)
		}
		courses = append(courses, c)
	}
	return courses, skipped, nil
}

func parseCourseRow(row []any) (models.Course, bool) {
	if len(row) < 3 {
		return models.Course{}, false
	}
	name, _ := row[0].(string)
	lat, latOK := row[1].(float64)
	lon, lonOK := row[2].(float64)
	name = strings.TrimSpace(name)
	if name == "" || !latOK || !lonOK || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return models.Course{}, false
	}
	c := models.Course{Name: name, Latitude: lat, Longitude: lon}
	if len(row) > 3 {
		if region, ok := row[3].(string); ok {
			c.Region = strings.TrimSpace(region)
		}
	}
	return c, true
}

// ImportCourseFiles loads each dataset file into the catalog. Index files
// such as us_index.json are skipped.
func ImportCourseFiles(w CourseWriter, now time.Time, paths ...string) (int, error) {
	total := 0
	for _, path := range paths {
		if strings.HasSuffix(filepath.Base(path), "_index.json") {
			log.Printf("courses: skipping index file %s", path)
			continue
		}
		n, err := importCourseFile(w, now, path)
		run := models.IngestRun{Source: "courses", StartedAt: now, FinishedAt: now, Success: err == nil, Records: n}
		if err != nil {
			run.Error = err.Error()
		}
		if _, rerr := w.RecordIngestRun(run); rerr != nil {
			log.Printf("courses: record run: %v", rerr)
		}
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func importCourseFile(w CourseWriter, now time.Time, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	source := filepath.Base(path)
	if parent := filepath.Base(filepath.Dir(path)); isCountryCode(parent) {
		source = parent + "/" + source
	}

	courses, skipped, err := ParseCourses(f, source)
	if err != nil {
		return 0, err
	}
	n, err := w.UpsertCourses(courses, now)
	if err != nil {
		return 0, fmt.Errorf("import %s: %w", path, err)
	}
	metrics.CoursesImported.Add(float64(n))
	log.Printf("courses: imported %d from %s (%d skipped)", n, source, skipped)
	return n, nil
}
