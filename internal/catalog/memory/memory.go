package memory

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"obras/internal/catalog"
	"obras/internal/core"
)

//go:embed seed.yaml
var seedYAML []byte

var _ catalog.Source = (*Store)(nil)

// Store serves a fixed catalog from memory.
type Store struct {
	mu  sync.RWMutex
	cat core.Catalog
}

func New(c core.Catalog) *Store {
	return &Store{cat: c}
}

// NewSeed returns a store holding the built-in demo data.
func NewSeed() (*Store, error) {
	c, err := Decode(bytes.NewReader(seedYAML))
	if err != nil {
		return nil, fmt.Errorf("embedded seed: %w", err)
	}
	return New(c), nil
}

// NewFromFile loads a catalog from a YAML file with the same layout as the
// embedded seed.
func NewFromFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return New(c), nil
}

// SeedYAML exposes the embedded seed, e.g. for writing a starter file.
func SeedYAML() []byte {
	return append([]byte(nil), seedYAML...)
}

func (s *Store) ListProjects(_ context.Context) ([]core.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Project, len(s.cat.Projects))
	for i, p := range s.cat.Projects {
		p.Timeline = append([]core.Milestone(nil), p.Timeline...)
		out[i] = p
	}
	return out, nil
}

func (s *Store) ListReceivables(_ context.Context) ([]core.Receivable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Receivable(nil), s.cat.Receivables...), nil
}

type seedFile struct {
	Projects    []projectRecord    `yaml:"projects"`
	Receivables []receivableRecord `yaml:"receivables"`
}

type projectRecord struct {
	ID            string            `yaml:"id"`
	Name          string            `yaml:"name"`
	Status        string            `yaml:"status"`
	Budget        string            `yaml:"budget"`
	Progress      int               `yaml:"progress"`
	Deadline      string            `yaml:"deadline"`
	CompletedOn   string            `yaml:"completed_on"`
	Responsible   string            `yaml:"responsible"`
	Contractor    string            `yaml:"contractor"`
	Client        string            `yaml:"client"`
	NextMilestone string            `yaml:"next_milestone"`
	Observations  string            `yaml:"observations"`
	Timeline      []milestoneRecord `yaml:"timeline"`
}

type milestoneRecord struct {
	ID          string `yaml:"id"`
	Date        string `yaml:"date"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Status      string `yaml:"status"`
}

type receivableRecord struct {
	ID      string `yaml:"id"`
	Client  string `yaml:"client"`
	Amount  string `yaml:"amount"`
	Concept string `yaml:"concept"`
	DueDate string `yaml:"due_date"`
	Status  string `yaml:"status"`
}

// Decode parses and validates a YAML catalog. Unknown fields are rejected.
func Decode(r io.Reader) (core.Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f seedFile
	if err := dec.Decode(&f); err != nil {
		return core.Catalog{}, fmt.Errorf("decode yaml: %w", err)
	}

	var c core.Catalog
	for _, pr := range f.Projects {
		p, err := pr.toProject()
		if err != nil {
			return core.Catalog{}, fmt.Errorf("project %q: %w", pr.ID, err)
		}
		c.Projects = append(c.Projects, p)
	}
	for _, rr := range f.Receivables {
		r, err := rr.toReceivable()
		if err != nil {
			return core.Catalog{}, fmt.Errorf("receivable %q: %w", rr.ID, err)
		}
		c.Receivables = append(c.Receivables, r)
	}
	if err := c.Validate(); err != nil {
		return core.Catalog{}, err
	}
	return c, nil
}

func (pr projectRecord) toProject() (core.Project, error) {
	status, err := core.ParseProjectStatus(pr.Status)
	if err != nil {
		return core.Project{}, err
	}
	budget, err := core.ParseAmount(pr.Budget)
	if err != nil {
		return core.Project{}, fmt.Errorf("budget %q: %w", pr.Budget, err)
	}
	p := core.Project{
		ID:            pr.ID,
		Name:          pr.Name,
		Status:        status,
		Budget:        core.Money{Cents: budget},
		Progress:      pr.Progress,
		Deadline:      pr.Deadline,
		CompletedOn:   pr.CompletedOn,
		Responsible:   pr.Responsible,
		Contractor:    pr.Contractor,
		Client:        pr.Client,
		NextMilestone: pr.NextMilestone,
		Observations:  pr.Observations,
	}
	for _, mr := range pr.Timeline {
		ms, err := core.ParseMilestoneStatus(mr.Status)
		if err != nil {
			return core.Project{}, fmt.Errorf("milestone %q: %w", mr.ID, err)
		}
		p.Timeline = append(p.Timeline, core.Milestone{
			ID:          mr.ID,
			Date:        mr.Date,
			Title:       mr.Title,
			Description: mr.Description,
			Status:      ms,
		})
	}
	return p, nil
}

func (rr receivableRecord) toReceivable() (core.Receivable, error) {
	status, err := core.ParseReceivableStatus(rr.Status)
	if err != nil {
		return core.Receivable{}, err
	}
	amount, err := core.ParseAmount(rr.Amount)
	if err != nil {
		return core.Receivable{}, fmt.Errorf("amount %q: %w", rr.Amount, err)
	}
	return core.Receivable{
		ID:      rr.ID,
		Client:  rr.Client,
		Amount:  core.Money{Cents: amount},
		Concept: rr.Concept,
		DueDate: rr.DueDate,
		Status:  status,
	}, nil
}
