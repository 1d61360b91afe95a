package catalog

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultCatalogPricesAndNames(t *testing.T) {
	c := MustDefault()

	cases := map[string]struct {
		name  string
		price int64
	}{
		"first-aid":          {"First Aid Level 1", 1500},
		"sewing":             {"Sewing Essentials", 1500},
		"landscaping":        {"Landscaping", 4500},
		"life-skills":        {"Life Skills", 1500},
		"child-minding":      {"Child Minding", 750},
		"cooking":            {"Cooking", 750},
		"garden-maintenance": {"Garden Maintenance", 750},
	}
	for id, want := range cases {
		price, err := c.PriceOf(id)
		if err != nil {
			t.Fatalf("PriceOf(%q): %v", id, err)
		}
		if price != want.price {
			t.Fatalf("PriceOf(%q): got=%d want=%d", id, price, want.price)
		}
		name, err := c.NameOf(id)
		if err != nil || name != want.name {
			t.Fatalf("NameOf(%q): got=%q err=%v want=%q", id, name, err, want.name)
		}
	}
	if got := len(c.AllIDs()); got != len(cases) {
		t.Fatalf("AllIDs: got=%d want=%d", got, len(cases))
	}
	if ids := c.AllIDs(); ids[0] != "first-aid" {
		t.Fatalf("AllIDs should keep catalog order, got first=%q", ids[0])
	}
}

func TestUnknownCourseIsConfigurationError(t *testing.T) {
	c := MustDefault()
	_, err := c.PriceOf("underwater-basket-weaving")
	if !errors.Is(err, ErrUnknownCourse) {
		t.Fatalf("expected ErrUnknownCourse, got %v", err)
	}
	var uce *UnknownCourseError
	if !errors.As(err, &uce) || uce.ID != "underwater-basket-weaving" {
		t.Fatalf("expected *UnknownCourseError with id, got %#v", err)
	}
	if _, err := c.NameOf(""); !errors.Is(err, ErrUnknownCourse) {
		t.Fatalf("empty id should be unknown, got %v", err)
	}
}

func TestGetReturnsDefensiveCopies(t *testing.T) {
	c := MustDefault()
	course, err := c.Get("cooking")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	course.Outcomes[0] = "mutated"
	again, _ := c.Get("cooking")
	if again.Outcomes[0] == "mutated" {
		t.Fatalf("catalog data was mutated through a returned course")
	}
}

func TestFilterAndSearch(t *testing.T) {
	c := MustDefault()

	if got := len(c.Filter("all")); got != 7 {
		t.Fatalf("Filter(all): got=%d want=7", got)
	}
	outdoor := c.Filter("Outdoor")
	if len(outdoor) != 2 {
		t.Fatalf("Filter(outdoor): got=%d want=2", len(outdoor))
	}
	if got := c.Filter("astronomy"); len(got) != 0 {
		t.Fatalf("Filter(astronomy): expected no results, got=%d", len(got))
	}

	garden := c.Search("  GARDEN ")
	ids := make([]string, 0, len(garden))
	for _, course := range garden {
		ids = append(ids, course.ID)
	}
	joined := strings.Join(ids, ",")
	if joined != "landscaping,garden-maintenance" {
		t.Fatalf("Search(garden): got=%s", joined)
	}
	if got := len(c.Search("")); got != 7 {
		t.Fatalf("empty search should match all, got=%d", got)
	}
	if got := c.Browse("care", "nannies"); len(got) != 1 || got[0].ID != "child-minding" {
		t.Fatalf("Browse(care, nannies): got=%v", got)
	}
}

func TestLoadRejectsInvalidCatalogs(t *testing.T) {
	cases := map[string]string{
		"bad version":    "version: 2\ncourses: [{id: a, name: A, price: 1}]",
		"no courses":     "version: 1\ncourses: []",
		"duplicate id":   "version: 1\ncourses: [{id: a, name: A, price: 1}, {id: a, name: B, price: 2}]",
		"zero price":     "version: 1\ncourses: [{id: a, name: A, price: 0}]",
		"missing name":   "version: 1\ncourses: [{id: a, price: 5}]",
		"tier too small": "version: 1\nvolume_tiers: [{min_courses: 0, percent: 5}]\ncourses: [{id: a, name: A, price: 1}]",
		"tier percent":   "version: 1\nvolume_tiers: [{min_courses: 2, percent: 120}]\ncourses: [{id: a, name: A, price: 1}]",
	}
	for name, doc := range cases {
		name, doc := name, doc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := Load([]byte(doc)); err == nil {
				t.Fatalf("expected load error")
			}
		})
	}
}

func TestTiersSortedAndSchedulesLoaded(t *testing.T) {
	c, err := Load([]byte(`version: 1
volume_tiers:
  - {min_courses: 4, percent: 15}
  - {min_courses: 2, percent: 5}
schedules:
  - {id: weekend, title: Saturday Classes}
courses:
  - {id: a, name: A, price: 10}
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tiers := c.VolumeTiers()
	if tiers[0].MinCourses != 2 || tiers[1].MinCourses != 4 {
		t.Fatalf("tiers not sorted: %+v", tiers)
	}
	if s, ok := c.Schedule("weekend"); !ok || s.Title != "Saturday Classes" {
		t.Fatalf("Schedule(weekend): got=%+v ok=%v", s, ok)
	}
	if c.Currency() != "R" {
		t.Fatalf("currency default: got=%q", c.Currency())
	}
}
