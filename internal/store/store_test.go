package store

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite"

	"github.com/lox/fairwayforecast/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrate(t *testing.T) {
	s := setupTestStore(t)

	version, err := s.MigrationVersion()
	if err != nil {
		t.Fatalf("MigrationVersion: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("version = %d, want %d", version, len(migrations))
	}

	if err := s.Migrate(); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestCachedPayloadTTL(t *testing.T) {
	s := setupTestStore(t)
	clock := clockwork.NewFakeClockAt(time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC))

	body := []byte(`{"hourly":[]}`)
	if err := s.PutCachedPayload("owm:51.500,-0.120", body, clock.Now(), 10*time.Minute); err != nil {
		t.Fatalf("PutCachedPayload: %v", err)
	}

	clock.Advance(9 * time.Minute)
	entry, err := s.GetCachedPayload("owm:51.500,-0.120", clock.Now())
	if err != nil {
		t.Fatalf("GetCachedPayload: %v", err)
	}
	if entry == nil {
		t.Fatal("entry = nil before expiry")
	}
	if string(entry.Body) != string(body) {
		t.Errorf("Body = %q, want %q", entry.Body, body)
	}
	if !entry.Fresh(clock.Now()) {
		t.Error("entry should be fresh")
	}

	clock.Advance(time.Minute)
	entry, err = s.GetCachedPayload("owm:51.500,-0.120", clock.Now())
	if err != nil {
		t.Fatalf("GetCachedPayload: %v", err)
	}
	if entry != nil {
		t.Errorf("entry = %+v, want nil at expiry", entry)
	}
}

func TestCachedPayloadReplace(t *testing.T) {
	s := setupTestStore(t)
	now := time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)

	if err := s.PutCachedPayload("k", []byte("old"), now, time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := s.PutCachedPayload("k", []byte("new"), now.Add(30*time.Second), time.Minute); err != nil {
		t.Fatal(err)
	}

	entry, err := s.GetCachedPayload("k", now.Add(80*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if entry == nil || string(entry.Body) != "new" {
		t.Fatalf("entry = %+v, want refreshed body", entry)
	}
	if n, _ := s.CacheSize(); n != 1 {
		t.Errorf("CacheSize = %d, want 1", n)
	}
}

func TestPutCachedPayloadRejectsZeroTTL(t *testing.T) {
	s := setupTestStore(t)
	if err := s.PutCachedPayload("k", []byte("x"), time.Now(), 0); err == nil {
		t.Error("expected error for zero ttl")
	}
}

func TestPruneExpired(t *testing.T) {
	s := setupTestStore(t)
	clock := clockwork.NewFakeClockAt(time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC))

	s.PutCachedPayload("short", []byte("a"), clock.Now(), 5*time.Minute)
	s.PutCachedPayload("long", []byte("b"), clock.Now(), time.Hour)

	clock.Advance(10 * time.Minute)
	n, err := s.PruneExpired(clock.Now())
	if err != nil {
		t.Fatalf("PruneExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned = %d, want 1", n)
	}
	if size, _ := s.CacheSize(); size != 1 {
		t.Errorf("CacheSize = %d, want 1", size)
	}

	s.DeleteCachedPayload("long")
	if size, _ := s.CacheSize(); size != 0 {
		t.Errorf("CacheSize = %d after delete, want 0", size)
	}
}

func TestUpsertAndSearchCourses(t *testing.T) {
	s := setupTestStore(t)
	now := time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)

	courses := []models.Course{
		{Name: "St Andrews Old Course", Latitude: 56.343, Longitude: -2.803, Country: "GB", Region: "Fife", Source: "gb.json"},
		{Name: "Royal Troon", Latitude: 55.532, Longitude: -4.647, Country: "GB", Region: "South Ayrshire", Source: "gb.json"},
		{Name: "Pebble Beach Golf Links", Latitude: 36.568, Longitude: -121.950, Country: "US", Region: "CA", Source: "us/CA.json"},
		{Name: "100% Fun_Course", Latitude: 1, Longitude: 1, Country: "US", Region: "TX", Source: "us/TX.json"},
	}
	n, err := s.UpsertCourses(courses, now)
	if err != nil {
		t.Fatalf("UpsertCourses: %v", err)
	}
	if n != 4 {
		t.Errorf("imported = %d, want 4", n)
	}

	tests := []struct {
		name    string
		query   string
		country string
		limit   int
		want    []string
	}{
		{"case insensitive", "royal", "", 10, []string{"Royal Troon"}},
		{"empty query lists all by name", "", "", 10, []string{"100% Fun_Course", "Pebble Beach Golf Links", "Royal Troon", "St Andrews Old Course"}},
		{"country filter", "", "gb", 10, []string{"Royal Troon", "St Andrews Old Course"}},
		{"limit", "", "", 1, []string{"100% Fun_Course"}},
		{"percent is literal", "%", "", 10, []string{"100% Fun_Course"}},
		{"underscore is literal", "n_c", "", 10, []string{"100% Fun_Course"}},
		{"no match", "augusta", "", 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SearchCourses(tt.query, tt.country, tt.limit)
			if err != nil {
				t.Fatalf("SearchCourses: %v", err)
			}
			var names []string
			for _, c := range got {
				names = append(names, c.Name)
			}
			if len(names) != len(tt.want) {
				t.Fatalf("got %v, want %v", names, tt.want)
			}
			for i := range names {
				if names[i] != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, names[i], tt.want[i])
				}
			}
		})
	}
}

func TestUpsertCoursesUpdatesExisting(t *testing.T) {
	s := setupTestStore(t)
	now := time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)

	c := models.Course{Name: "Royal Troon", Latitude: 55.532, Longitude: -4.647, Country: "GB"}
	s.UpsertCourses([]models.Course{c}, now)
	c.Region = "South Ayrshire"
	s.UpsertCourses([]models.Course{c}, now.Add(time.Hour))

	if n, _ := s.CountCourses(); n != 1 {
		t.Fatalf("CountCourses = %d, want 1", n)
	}
	got, _ := s.SearchCourses("troon", "", 1)
	if got[0].Region != "South Ayrshire" {
		t.Errorf("Region = %q, want update applied", got[0].Region)
	}
	if !got[0].UpdatedAt.Equal(now.Add(time.Hour)) {
		t.Errorf("UpdatedAt = %v", got[0].UpdatedAt)
	}
}

func TestIngestRuns(t *testing.T) {
	s := setupTestStore(t)
	start := time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)

	if run, err := s.LastIngestRun("warm"); err != nil || run != nil {
		t.Fatalf("LastIngestRun on empty = %v, %v", run, err)
	}

	s.RecordIngestRun(models.IngestRun{Source: "warm", StartedAt: start, FinishedAt: start.Add(time.Second), Success: true, Records: 3})
	s.RecordIngestRun(models.IngestRun{Source: "warm", StartedAt: start.Add(15 * time.Minute), FinishedAt: start.Add(15 * time.Minute), Success: false, Error: "upstream 503"})
	s.RecordIngestRun(models.IngestRun{Source: "courses", StartedAt: start.Add(time.Hour), Success: true})

	run, err := s.LastIngestRun("warm")
	if err != nil {
		t.Fatalf("LastIngestRun: %v", err)
	}
	if run.Success || run.Error != "upstream 503" {
		t.Errorf("run = %+v, want the failed second cycle", run)
	}
	if !run.StartedAt.Equal(start.Add(15 * time.Minute)) {
		t.Errorf("StartedAt = %v", run.StartedAt)
	}
}
