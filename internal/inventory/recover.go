package inventory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"course-migrate/internal/concurrency"
	"course-migrate/internal/domain"
	"course-migrate/internal/markup"
	"course-migrate/internal/report"
)

// RecoveredModuleID identifies the synthetic module that collects
// orphaned content, appended after all manifest-derived modules.
const (
	RecoveredModuleID    = "recovered_content"
	RecoveredModuleTitle = "Recovered Content"
)

var idUnsafeRe = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// RecoveredID derives a stable entity identifier from a relative file
// path, so re-runs over the same input produce the same identifiers.
func RecoveredID(relPath string) string {
	s := idUnsafeRe.ReplaceAllString(strings.ToLower(relPath), "_")
	return "recovered_" + strings.Trim(s, "_")
}

// Recover synthesizes page entities for orphaned files with recognized
// content extensions and attaches them to the course under the
// recovered-content module. Extraction runs on a bounded worker pool;
// results are folded back in sorted path order so report events and
// entity ordering stay deterministic. Files that fail extraction are
// recorded as errors and counted, never silently dropped.
func Recover(ctx context.Context, root string, orphans []string, workers int, course *domain.Course, rep *report.Report) {
	var recognized []string
	for _, p := range orphans {
		if markup.RecognizedContentPath(p) {
			recognized = append(recognized, p)
		}
	}
	if len(recognized) == 0 {
		return
	}
	sort.Strings(recognized)

	type extracted struct {
		fields markup.Fields
	}
	results, errs := concurrency.Map(ctx, recognized, concurrency.Options{MaxWorkers: workers},
		func(_ context.Context, _ int, relPath string) (extracted, error) {
			data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(relPath)))
			if err != nil {
				return extracted{}, fmt.Errorf("read: %w", err)
			}
			fields, err := markup.ExtractFields(relPath, data)
			if err != nil {
				return extracted{}, err
			}
			return extracted{fields: fields}, nil
		})

	module := &domain.OrgNode{
		Identifier: RecoveredModuleID,
		Title:      RecoveredModuleTitle,
	}

	for i, relPath := range recognized {
		id := RecoveredID(relPath)
		if errs[i] != nil {
			rep.Error(report.StageInventory,
				fmt.Sprintf("orphaned file %s not recovered: %v", relPath, errs[i]), id)
			rep.Count("files_not_recovered", 1)
			continue
		}

		fields := results[i].fields
		title := fields.Title
		if title == "" {
			title = markup.HumanizeFilename(relPath)
		}
		if strings.TrimSpace(fields.Body) == "" {
			rep.Warn(report.StageInventory,
				fmt.Sprintf("no content extracted from orphaned file %s", relPath), id)
		}

		course.Pages[id] = &domain.Page{
			Identifier: id,
			Title:      title,
			Body:       fields.Body,
			Notes:      fields.Notes,
			SourcePath: relPath,
			Origin:     domain.OriginRecovered,
			State:      domain.StateActive,
		}
		course.Resources = append(course.Resources, domain.Resource{
			Identifier: id,
			Type:       domain.ResourcePage,
			Href:       relPath,
			Title:      title,
		})
		module.Children = append(module.Children, &domain.OrgNode{
			Identifier:  id,
			Title:       title,
			ResourceRef: id,
		})
		rep.Count("recovered", 1)
		rep.Info(report.StageInventory, fmt.Sprintf("recovered orphaned file %s", relPath), id)
	}

	if len(module.Children) > 0 {
		course.Modules = append(course.Modules, module)
	}
}
