// Package cli is the reconciler's command-line surface (§6/§7): sync,
// manual, import, export, list, summary, schedule, report, status. It
// drives the engine directly — there is no server in between.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bvtime/reconciler/engine/authsource"
	"github.com/bvtime/reconciler/engine/calendar"
	"github.com/bvtime/reconciler/engine/compare"
	"github.com/bvtime/reconciler/engine/manualentry"
	"github.com/bvtime/reconciler/engine/reconcile"
	"github.com/bvtime/reconciler/engine/transport"
	"github.com/bvtime/reconciler/engine/workitem"
	"github.com/bvtime/reconciler/pkg/config"
	"github.com/bvtime/reconciler/pkg/logger"
)

// app bundles everything a command needs once config is loaded: logger,
// manual-entry store, and lazily-built transport clients.
type app struct {
	cfg *config.Config
	log logger.Logger
}

func newApp(cmd *cobra.Command) (*app, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.NewLogger(&logger.Config{Level: logger.LogLevel(cfg.LogLevel)})
	return &app{cfg: cfg, log: log}, nil
}

func (a *app) context(ctx context.Context) context.Context {
	return logger.ContextWithLogger(ctx, a.log)
}

// authProvider picks bearer-token or basic-auth credentials per §4.A,
// preferring the OAuth2 client-credentials flow when configured.
func (a *app) authProvider() (transport.AuthProvider, error) {
	if a.cfg.ClientID != "" && a.cfg.ClientSecret != "" && a.cfg.TenantID != "" {
		scopes := []string{"https://app.vssps.visualstudio.com/.default"}
		return authsource.NewBearerProvider(a.cfg.ClientID, a.cfg.ClientSecret, a.cfg.TenantID, scopes), nil
	}
	if a.cfg.DevOpsToken != "" {
		return authsource.NewBasicProvider(a.cfg.DevOpsToken), nil
	}
	return nil, fmt.Errorf("no credentials configured: set devops_token or client_id/client_secret/tenant_id")
}

// orchestrator wires components A-H into a single reconcile.Orchestrator
// against the configured org/project.
func (a *app) orchestrator() (*reconcile.Orchestrator, error) {
	auth, err := a.authProvider()
	if err != nil {
		return nil, err
	}

	calClient := transport.NewClient(transport.DefaultConfig("https://graph.microsoft.com/v1.0", auth))
	calSource := calendar.NewHTTPSource(calClient)

	witBaseURL := fmt.Sprintf("https://dev.azure.com/%s", a.cfg.Org)
	witClient := transport.NewClient(transport.DefaultConfig(witBaseURL, auth))
	store := workitem.NewHTTPStore(witClient, a.cfg.Org, a.cfg.Project)

	loc, err := time.LoadLocation(a.cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", a.cfg.Timezone, err)
	}

	return reconcile.New(calSource, store, loc, compare.DefaultThresholds(), a.cfg.DryRun), nil
}

func (a *app) manualStore() *manualentry.Store {
	return manualentry.NewStore(a.cfg.ManualStorePath)
}

// runParams builds the Params every reconciliation-driving command shares,
// layering CLI flag overrides on top of config defaults.
func runParams(cmd *cobra.Command, cfg *config.Config) (reconcile.Params, error) {
	days, err := cmd.Flags().GetInt("days")
	if err != nil {
		return reconcile.Params{}, err
	}
	user, err := cmd.Flags().GetString("user")
	if err != nil {
		return reconcile.Params{}, err
	}
	now := time.Now()
	return reconcile.Params{
		Start:          now.AddDate(0, 0, -days),
		End:            now,
		DefaultUser:    user,
		Project:        cfg.Project,
		ConflictLogCap: 100,
		AuditLogCap:    100,
	}, nil
}
