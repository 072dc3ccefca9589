// Package catalog defines the read-only ports the dashboard loads its data
// through, plus the loader that assembles them into one core.Catalog.
package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"obras/internal/core"
)

// Ports for outbound adapters. Implementations only read.
type (
	ProjectLister interface {
		// ListProjects returns every project with its timeline attached.
		ListProjects(ctx context.Context) ([]core.Project, error)
	}

	ReceivableLister interface {
		ListReceivables(ctx context.Context) ([]core.Receivable, error)
	}

	Source interface {
		ProjectLister
		ReceivableLister
	}
)

// Load reads projects and receivables concurrently and validates the result.
func Load(ctx context.Context, src Source) (core.Catalog, error) {
	var c core.Catalog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ps, err := src.ListProjects(gctx)
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}
		c.Projects = ps
		return nil
	})
	g.Go(func() error {
		rs, err := src.ListReceivables(gctx)
		if err != nil {
			return fmt.Errorf("list receivables: %w", err)
		}
		c.Receivables = rs
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Catalog{}, err
	}
	if err := c.Validate(); err != nil {
		return core.Catalog{}, fmt.Errorf("invalid catalog: %w", err)
	}
	return c, nil
}

// AttachTimelines groups milestones by project id onto the matching
// projects, keeping milestone order. Milestones for unknown projects are
// returned as orphans.
func AttachTimelines(projects []core.Project, milestones map[string][]core.Milestone) (orphans []string) {
	known := make(map[string]struct{}, len(projects))
	for i := range projects {
		known[projects[i].ID] = struct{}{}
		projects[i].Timeline = append(projects[i].Timeline, milestones[projects[i].ID]...)
	}
	for id := range milestones {
		if _, ok := known[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	return orphans
}
