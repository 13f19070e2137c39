// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/yatube/internal/app/resources"
	"github.com/dalemusser/yatube/internal/app/store"
	"github.com/dalemusser/yatube/internal/app/system/normalize"
	"github.com/dalemusser/yatube/internal/app/system/timeouts"
	"github.com/dalemusser/yatube/internal/app/system/viewdata"
	"github.com/dalemusser/yatube/internal/domain/models"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It applies
// the timeout and site settings, registers the shared templates and creates
// any configured groups that do not exist yet.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{Short: appCfg.TimeoutShort, Medium: appCfg.TimeoutMedium})
	cur := timeouts.Current()
	logger.Info("timeouts configured",
		zap.Duration("ping", cur.Ping),
		zap.Duration("short", cur.Short),
		zap.Duration("medium", cur.Medium))

	viewdata.SetSiteName(appCfg.SiteName)
	resources.LoadSharedTemplates()

	seeds, err := parseSeedGroups(appCfg.SeedGroups)
	if err != nil {
		return err
	}
	if len(seeds) > 0 {
		if err := seedGroups(ctx, newBackends(deps).groups, seeds, logger); err != nil {
			logger.Error("seeding groups failed", zap.Error(err))
			return err
		}
	}

	if deps.LoginPrune != nil {
		deps.LoginPrune.Start()
	}
	return nil
}

// parseSeedGroups reads "slug|title|description;slug|title|description".
// The description is optional; blank entries are skipped.
func parseSeedGroups(raw string) ([]models.Group, error) {
	var out []models.Group
	seen := map[string]bool{}
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "|", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("seed_groups entry %q: want slug|title|description", entry)
		}
		g := models.Group{
			Slug:  normalize.Slug(parts[0]),
			Title: strings.TrimSpace(parts[1]),
		}
		if len(parts) == 3 {
			g.Description = strings.TrimSpace(parts[2])
		}
		if g.Slug == "" || g.Title == "" {
			return nil, fmt.Errorf("seed_groups entry %q: slug and title are required", entry)
		}
		if seen[g.Slug] {
			return nil, fmt.Errorf("seed_groups: slug %q listed twice", g.Slug)
		}
		seen[g.Slug] = true
		out = append(out, g)
	}
	return out, nil
}

// seedGroups creates each group whose slug is not taken. Existing groups are
// left as they are.
func seedGroups(ctx context.Context, groups groupStore, seeds []models.Group, logger *zap.Logger) error {
	for _, g := range seeds {
		if _, err := groups.GetBySlug(ctx, g.Slug); err == nil {
			logger.Debug("group exists", zap.String("slug", g.Slug))
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("look up group %q: %w", g.Slug, err)
		}

		created, err := groups.Create(ctx, g)
		if errors.Is(err, store.ErrDuplicate) {
			continue
		}
		if err != nil {
			return fmt.Errorf("create group %q: %w", g.Slug, err)
		}
		logger.Info("group created", zap.String("slug", created.Slug), zap.String("id", created.ID.Hex()))
	}
	return nil
}
