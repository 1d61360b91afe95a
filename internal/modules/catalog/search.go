package catalog

import (
	"sort"
	"strings"
)

const CategoryAll = "all"

// Filter returns courses in the given category; "" and "all" match everything.
func (c *Catalog) Filter(category string) []Course {
	category = strings.TrimSpace(strings.ToLower(category))
	out := make([]Course, 0, len(c.courses))
	for _, course := range c.courses {
		if category == "" || category == CategoryAll || course.Category == category {
			out = append(out, cloneCourse(course))
		}
	}
	return out
}

// Search matches the trimmed, case-folded term against name and description.
func (c *Catalog) Search(term string) []Course {
	return matchTerm(c.Courses(), term)
}

// Browse applies the category filter and then the search term.
func (c *Catalog) Browse(category, term string) []Course {
	return matchTerm(c.Filter(category), term)
}

func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, course := range c.courses {
		if course.Category == "" || seen[course.Category] {
			continue
		}
		seen[course.Category] = true
		out = append(out, course.Category)
	}
	sort.Strings(out)
	return out
}

func matchTerm(courses []Course, term string) []Course {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return courses
	}
	out := courses[:0]
	for _, course := range courses {
		if strings.Contains(strings.ToLower(course.Name), term) ||
			strings.Contains(strings.ToLower(course.Description), term) {
			out = append(out, course)
		}
	}
	return out
}
