package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/sync/errgroup"

	appcli "github.com/sobhan-h/subpanel-client/internal/cli"
	"github.com/sobhan-h/subpanel-client/internal/format"
	"github.com/sobhan-h/subpanel-client/internal/panel"
)

// StatusCommand fetches and renders the account snapshot.
var StatusCommand = &cli.Command{
	Name:  "status",
	Usage: "Show subscription status",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
			Usage:   "Enable debug output",
		},
	},
	Action: statusAction,
}

// KeepaliveCommand pings the panel with the stored session.
var KeepaliveCommand = &cli.Command{
	Name:   "keepalive",
	Usage:  "Tell the panel this session is still in use",
	Action: keepaliveAction,
}

// SyncCommand refreshes status and reports a pending app-version change in
// one go.
var SyncCommand = &cli.Command{
	Name:  "sync",
	Usage: "Refresh status and report app version if it changed",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "fcm-token",
			Usage: "Also register this push token with the panel",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
			Usage:   "Enable debug output",
		},
	},
	Action: syncAction,
}

func statusAction(ctx context.Context, cmd *cli.Command) error {
	app, err := appcli.Bootstrap(cmd.Root().Version, cmd.Bool("debug"))
	if err != nil {
		return err
	}

	token, err := app.SessionToken()
	if err != nil {
		return err
	}

	snap, err := app.Auth.Status(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to fetch status: %w", err)
	}

	render(app, snap)
	return nil
}

func render(app *appcli.App, snap *panel.StatusSnapshot) {
	if snap.Username != nil {
		fmt.Printf("Account:   %s\n", *snap.Username)
	}
	if snap.Status != nil {
		fmt.Printf("Status:    %s\n", *snap.Status)
	}

	traffic := format.TrafficSummary(snap.DataLimit, snap.UsedTraffic)
	fmt.Printf("Traffic:   %s used / %s total (%s remaining)\n",
		traffic.Used, traffic.Total, traffic.Remain)

	firstLogin := firstLoginMillis(app)
	days := format.DaysSummary(snap.Expire, firstLogin, time.Now())
	fmt.Printf("Days:      %s remaining of %s\n", days.Remain, days.Total)

	if snap.NeedUpdate != nil && *snap.NeedUpdate {
		if snap.IsIgnoreable != nil && *snap.IsIgnoreable {
			fmt.Println("Update:    available (optional)")
		} else {
			fmt.Println("Update:    required")
		}
	}

	if len(snap.Links) > 0 {
		fmt.Println("Links:")
		for _, link := range snap.Links {
			fmt.Printf("  %s\n", link)
		}
	}

	if snap.DataLimit != nil {
		drawTrafficBar(*snap.DataLimit, used(snap))
	}
}

func used(snap *panel.StatusSnapshot) int64 {
	if snap.UsedTraffic == nil {
		return 0
	}
	return *snap.UsedTraffic
}

func firstLoginMillis(app *appcli.App) *int64 {
	ms, ok, err := app.Store.FirstLogin()
	if err != nil || !ok {
		return nil
	}
	return &ms
}

// drawTrafficBar renders a one-shot usage bar for limited plans.
func drawTrafficBar(total, used int64) {
	if total <= 0 {
		return
	}
	if used > total {
		used = total
	}

	p := mpb.New(mpb.WithWidth(40))
	bar := p.AddBar(total,
		mpb.PrependDecorators(
			decor.Name("usage ", decor.WCSyncSpaceR),
			decor.Counters(decor.SizeB1024(0), "% .2f / % .2f", decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncSpace),
		),
	)
	bar.SetCurrent(used)
	bar.Abort(false)
	p.Wait()
}

func keepaliveAction(ctx context.Context, cmd *cli.Command) error {
	app, err := appcli.Bootstrap(cmd.Root().Version, false)
	if err != nil {
		return err
	}

	token, err := app.SessionToken()
	if err != nil {
		return err
	}

	if err := app.Auth.Keepalive(ctx, token); err != nil {
		if errors.Is(err, panel.ErrUnauthorized) {
			return fmt.Errorf("session expired, run 'subctl login' again: %w", err)
		}
		return fmt.Errorf("keepalive failed: %w", err)
	}

	fmt.Println("✓ Session alive")
	return nil
}

func syncAction(ctx context.Context, cmd *cli.Command) error {
	app, err := appcli.Bootstrap(cmd.Root().Version, cmd.Bool("debug"))
	if err != nil {
		return err
	}

	token, err := app.SessionToken()
	if err != nil {
		return err
	}

	var (
		snap     *panel.StatusSnapshot
		reported bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap, err = app.Auth.Status(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		reported, err = app.Auth.ReportAppUpdateIfNeeded(gctx, token)
		return err
	})
	if fcm := cmd.String("fcm-token"); fcm != "" {
		g.Go(func() error {
			return app.Auth.UpdateFCMToken(gctx, token, fcm)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if reported {
		fmt.Println("✓ App version reported")
	}
	render(app, snap)
	return nil
}
