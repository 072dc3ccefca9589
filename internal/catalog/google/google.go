package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"obras/internal/catalog"
	"obras/internal/core"
)

var _ catalog.Source = (*Client)(nil)

// Config names the spreadsheet and the three sheets the catalog is read
// from.
type Config struct {
	SpreadsheetID    string
	ProjectsSheet    string
	MilestonesSheet  string
	ReceivablesSheet string
}

// Client reads the catalog from Google Sheets with read-only scope.
type Client struct {
	svc    *gsheet.Service
	cfg    Config
	logger *slog.Logger
}

func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if logger == nil {
		logger = slog.Default()
	}
	svc, err := newSheetsService(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, cfg: cfg, logger: logger}, nil
}

// newSheetsService prefers an OAuth user token (written by oauth-init) and
// falls back to service account credentials in GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, logger *slog.Logger) (*gsheet.Service, error) {
	if ts, ok, err := oauthTokenSource(ctx); err != nil {
		return nil, err
	} else if ok {
		logger.InfoContext(ctx, "Creating Google Sheets service", "auth", "oauth", "scope", gsheet.SpreadsheetsReadonlyScope)
		return gsheet.NewService(ctx, goption.WithTokenSource(ts))
	}

	inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var creds []byte
	switch {
	case inline != "":
		creds = []byte(inline)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		creds = b
	default:
		return nil, errors.New("missing credentials (set GOOGLE_OAUTH_CLIENT_* and GOOGLE_OAUTH_TOKEN_*, or GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS)")
	}

	logger.InfoContext(ctx, "Creating Google Sheets service",
		"auth", "service_account",
		"credentials_size", len(creds),
		"scope", gsheet.SpreadsheetsReadonlyScope)

	return gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
}

// oauthTokenSource reports ok=false when no OAuth client is configured.
func oauthTokenSource(ctx context.Context) (oauth2.TokenSource, bool, error) {
	client, err := envBytes("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	if err != nil || client == nil {
		return nil, false, err
	}
	rawToken, err := envBytes("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	if err != nil {
		return nil, false, err
	}
	if rawToken == nil {
		return nil, false, errors.New("OAuth client set but no token: run oauth-init and set GOOGLE_OAUTH_TOKEN_FILE")
	}

	cfg, err := goauth.ConfigFromJSON(client, gsheet.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, false, fmt.Errorf("oauth client config: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(rawToken, &tok); err != nil {
		return nil, false, fmt.Errorf("oauth token: %w", err)
	}
	return cfg.TokenSource(ctx, &tok), true, nil
}

// envBytes returns the inline value of jsonKey, or the contents of the
// file named by fileKey, or nil when neither is set.
func envBytes(jsonKey, fileKey string) ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv(jsonKey)); inline != "" {
		return []byte(inline), nil
	}
	file := strings.TrimSpace(os.Getenv(fileKey))
	if file == "" {
		return nil, nil
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileKey, err)
	}
	return b, nil
}

// ListProjects reads the projects and milestones sheets concurrently and
// attaches each timeline to its project.
func (c *Client) ListProjects(ctx context.Context) ([]core.Project, error) {
	var projectRows, milestoneRows [][]interface{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		projectRows, err = c.read(gctx, c.cfg.ProjectsSheet)
		return err
	})
	g.Go(func() (err error) {
		milestoneRows, err = c.read(gctx, c.cfg.MilestonesSheet)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	projects, err := parseProjects(projectRows)
	if err != nil {
		return nil, err
	}
	milestones, err := parseMilestones(milestoneRows)
	if err != nil {
		return nil, err
	}
	if orphans := catalog.AttachTimelines(projects, milestones); len(orphans) > 0 {
		c.logger.WarnContext(ctx, "Milestones reference unknown projects", "project_ids", orphans)
	}
	return projects, nil
}

func (c *Client) ListReceivables(ctx context.Context) ([]core.Receivable, error) {
	rows, err := c.read(ctx, c.cfg.ReceivablesSheet)
	if err != nil {
		return nil, err
	}
	return parseReceivables(rows)
}

func (c *Client) read(ctx context.Context, sheet string) ([][]interface{}, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:Z", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.cfg.SpreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	c.logger.DebugContext(ctx, "Read sheet", "range", rng, "rows", len(resp.Values))
	return resp.Values, nil
}
