package catalog

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed courses.yaml
var defaultCatalogFS embed.FS

var ErrUnknownCourse = errors.New("unknown course")

// UnknownCourseError is a configuration error: well-formed controls only ever
// send ids that came from the catalog.
type UnknownCourseError struct {
	ID string
}

func (e *UnknownCourseError) Error() string {
	return fmt.Sprintf("catalog: unknown course %q", e.ID)
}

func (e *UnknownCourseError) Is(target error) bool { return target == ErrUnknownCourse }

type Course struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Price         int64    `json:"price" yaml:"price"`
	Category      string   `json:"category" yaml:"category"`
	Duration      string   `json:"duration" yaml:"duration"`
	Description   string   `json:"description" yaml:"description"`
	Certification string   `json:"certification" yaml:"certification"`
	Outcomes      []string `json:"outcomes" yaml:"outcomes"`
	Requirements  []string `json:"requirements" yaml:"requirements"`
}

type Tier struct {
	MinCourses int `json:"min_courses" yaml:"min_courses"`
	Percent    int `json:"percent" yaml:"percent"`
}

type Schedule struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

type Testimonial struct {
	Author string `json:"author" yaml:"author"`
	Course string `json:"course" yaml:"course"`
	Quote  string `json:"quote" yaml:"quote"`
}

type yamlCatalog struct {
	Version      int           `yaml:"version"`
	Currency     string        `yaml:"currency"`
	VolumeTiers  []Tier        `yaml:"volume_tiers"`
	Schedules    []Schedule    `yaml:"schedules"`
	Courses      []Course      `yaml:"courses"`
	Testimonials []Testimonial `yaml:"testimonials"`
}

// Catalog is immutable once loaded; accessors hand out copies.
type Catalog struct {
	currency     string
	courses      []Course
	byID         map[string]int
	tiers        []Tier
	schedules    []Schedule
	testimonials []Testimonial
}

// Default loads the catalog compiled into the binary.
func Default() (*Catalog, error) {
	data, err := defaultCatalogFS.ReadFile("courses.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded catalog: %w", err)
	}
	return Load(data)
}

// MustDefault panics when the embedded catalog is invalid.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Load(data)
}

func Load(data []byte) (*Catalog, error) {
	var raw yamlCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := validateCatalog(&raw); err != nil {
		return nil, err
	}

	c := &Catalog{
		currency:     raw.Currency,
		courses:      make([]Course, 0, len(raw.Courses)),
		byID:         make(map[string]int, len(raw.Courses)),
		tiers:        append([]Tier(nil), raw.VolumeTiers...),
		schedules:    append([]Schedule(nil), raw.Schedules...),
		testimonials: append([]Testimonial(nil), raw.Testimonials...),
	}
	if c.currency == "" {
		c.currency = "R"
	}
	for _, course := range raw.Courses {
		course.ID = strings.TrimSpace(course.ID)
		c.byID[course.ID] = len(c.courses)
		c.courses = append(c.courses, course)
	}
	sort.SliceStable(c.tiers, func(i, j int) bool { return c.tiers[i].MinCourses < c.tiers[j].MinCourses })
	return c, nil
}

func validateCatalog(raw *yamlCatalog) error {
	if raw.Version != 1 {
		return fmt.Errorf("catalog: unsupported version %d", raw.Version)
	}
	if len(raw.Courses) == 0 {
		return errors.New("catalog: no courses")
	}
	seen := make(map[string]bool, len(raw.Courses))
	for i, course := range raw.Courses {
		id := strings.TrimSpace(course.ID)
		if id == "" {
			return fmt.Errorf("catalog: course %d has no id", i)
		}
		if seen[id] {
			return fmt.Errorf("catalog: duplicate course id %q", id)
		}
		seen[id] = true
		if strings.TrimSpace(course.Name) == "" {
			return fmt.Errorf("catalog: course %q has no name", id)
		}
		if course.Price <= 0 {
			return fmt.Errorf("catalog: course %q has non-positive price %d", id, course.Price)
		}
	}
	mins := make(map[int]bool, len(raw.VolumeTiers))
	for _, tier := range raw.VolumeTiers {
		if tier.MinCourses < 1 {
			return fmt.Errorf("catalog: volume tier min_courses must be >= 1, got %d", tier.MinCourses)
		}
		if tier.Percent < 0 || tier.Percent > 100 {
			return fmt.Errorf("catalog: volume tier percent out of range: %d", tier.Percent)
		}
		if mins[tier.MinCourses] {
			return fmt.Errorf("catalog: duplicate volume tier for %d courses", tier.MinCourses)
		}
		mins[tier.MinCourses] = true
	}
	scheduleIDs := make(map[string]bool, len(raw.Schedules))
	for _, s := range raw.Schedules {
		if s.ID == "" || scheduleIDs[s.ID] {
			return fmt.Errorf("catalog: invalid or duplicate schedule id %q", s.ID)
		}
		scheduleIDs[s.ID] = true
	}
	return nil
}

func (c *Catalog) Currency() string { return c.currency }

func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

func (c *Catalog) Get(id string) (Course, error) {
	idx, ok := c.byID[id]
	if !ok {
		return Course{}, &UnknownCourseError{ID: id}
	}
	return cloneCourse(c.courses[idx]), nil
}

func (c *Catalog) PriceOf(id string) (int64, error) {
	idx, ok := c.byID[id]
	if !ok {
		return 0, &UnknownCourseError{ID: id}
	}
	return c.courses[idx].Price, nil
}

func (c *Catalog) NameOf(id string) (string, error) {
	idx, ok := c.byID[id]
	if !ok {
		return "", &UnknownCourseError{ID: id}
	}
	return c.courses[idx].Name, nil
}

// AllIDs returns ids in catalog order.
func (c *Catalog) AllIDs() []string {
	out := make([]string, 0, len(c.courses))
	for _, course := range c.courses {
		out = append(out, course.ID)
	}
	return out
}

func (c *Catalog) Courses() []Course {
	out := make([]Course, 0, len(c.courses))
	for _, course := range c.courses {
		out = append(out, cloneCourse(course))
	}
	return out
}

func (c *Catalog) VolumeTiers() []Tier { return append([]Tier(nil), c.tiers...) }

func (c *Catalog) Schedules() []Schedule { return append([]Schedule(nil), c.schedules...) }

func (c *Catalog) Schedule(id string) (Schedule, bool) {
	for _, s := range c.schedules {
		if s.ID == id {
			return s, true
		}
	}
	return Schedule{}, false
}

func (c *Catalog) Testimonials() []Testimonial {
	return append([]Testimonial(nil), c.testimonials...)
}

func cloneCourse(course Course) Course {
	course.Outcomes = append([]string(nil), course.Outcomes...)
	course.Requirements = append([]string(nil), course.Requirements...)
	return course
}
