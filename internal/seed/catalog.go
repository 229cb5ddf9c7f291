// Package seed loads a YAML catalog of courses and tracks into the stores.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"learnpath-backend/internal/domain"

	"gopkg.in/yaml.v3"
)

type Catalog struct {
	Courses []CourseSpec `yaml:"courses"`
	Tracks  []TrackSpec  `yaml:"tracks"`
}

type CourseSpec struct {
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Published   bool        `yaml:"published"`
	Modules     []StageSpec `yaml:"modules"`
}

type TrackSpec struct {
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Levels      []StageSpec `yaml:"levels"`
}

// StageSpec is a module of a course or a level of a track.
type StageSpec struct {
	Title   string       `yaml:"title"`
	Order   int          `yaml:"order"`
	Lessons []LessonSpec `yaml:"lessons"`
}

type LessonSpec struct {
	Title    string `yaml:"title"`
	Type     string `yaml:"type"`
	Order    int    `yaml:"order"`
	Required bool   `yaml:"required"`
	XP       int    `yaml:"xp"`
	Duration int    `yaml:"duration"`
	Body     string `yaml:"body"`
}

func (s StageSpec) lessons() []domain.Lesson {
	out := make([]domain.Lesson, 0, len(s.Lessons))
	for _, l := range s.Lessons {
		out = append(out, domain.Lesson{
			Title:           l.Title,
			Type:            domain.LessonType(l.Type),
			OrderIndex:      l.Order,
			Required:        l.Required,
			RewardXP:        l.XP,
			DurationSeconds: l.Duration,
			Body:            l.Body,
		})
	}
	return out
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return &cat, nil
}

type Result struct {
	Courses int
	Tracks  int
	Skipped int
}

// Apply creates every course and track of the catalog that does not exist
// yet, matching by title. authorID owns what gets created.
func Apply(ctx context.Context, cat *Catalog, courses domain.CourseUsecase, tracks domain.TrackUsecase, authorID uint) (Result, error) {
	var res Result

	existingCourses, err := courses.GetAllCourses(ctx)
	if err != nil {
		return res, err
	}
	courseTitles := make(map[string]bool, len(existingCourses))
	for _, c := range existingCourses {
		courseTitles[c.Title] = true
	}

	for _, spec := range cat.Courses {
		if courseTitles[spec.Title] {
			res.Skipped++
			continue
		}
		course := domain.Course{
			Title:        spec.Title,
			Description:  spec.Description,
			InstructorID: authorID,
			IsPublished:  spec.Published,
		}
		if err := courses.CreateCourse(ctx, &course); err != nil {
			return res, fmt.Errorf("course %q: %w", spec.Title, err)
		}
		for _, m := range spec.Modules {
			module := domain.Module{CourseID: course.ID, Title: m.Title, OrderIndex: m.Order, Lessons: m.lessons()}
			if err := courses.AddModule(ctx, &module); err != nil {
				return res, fmt.Errorf("course %q module %q: %w", spec.Title, m.Title, err)
			}
		}
		courseTitles[spec.Title] = true
		res.Courses++
	}

	existingTracks, err := tracks.GetAllTracks(ctx)
	if err != nil {
		return res, err
	}
	trackTitles := make(map[string]bool, len(existingTracks))
	for _, t := range existingTracks {
		trackTitles[t.Title] = true
	}

	for _, spec := range cat.Tracks {
		if trackTitles[spec.Title] {
			res.Skipped++
			continue
		}
		track := domain.Track{Title: spec.Title, Description: spec.Description, CreatedByID: authorID}
		if err := tracks.CreateTrack(ctx, &track); err != nil {
			return res, fmt.Errorf("track %q: %w", spec.Title, err)
		}
		for _, l := range spec.Levels {
			level := domain.Level{TrackID: track.ID, Title: l.Title, OrderIndex: l.Order, Lessons: l.lessons()}
			if err := tracks.AddLevel(ctx, &level); err != nil {
				return res, fmt.Errorf("track %q level %q: %w", spec.Title, l.Title, err)
			}
		}
		trackTitles[spec.Title] = true
		res.Tracks++
	}

	slog.Info("catalog seeded", "courses", res.Courses, "tracks", res.Tracks, "skipped", res.Skipped)
	return res, nil
}
