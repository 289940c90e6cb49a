package main

import (
	"fmt"
	"modflow/backend/internal/auth"
	"modflow/backend/internal/config"
	"modflow/backend/internal/models"
	"modflow/backend/internal/moderation"
	"modflow/backend/internal/permission"
	"strings"
	"time"

	"github.com/pkg/errors"
	cli "github.com/urfave/cli/v2"
)

func withPageFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		&cli.IntFlag{Name: "page", Value: 1},
		&cli.IntFlag{Name: "limit", Usage: "page size, 0 for the default"},
	)
}

var tokenCmd = &cli.Command{
	Name:  "token",
	Usage: "mint an API token for the --as staff account",
	Flags: []cli.Flag{
		&cli.DurationFlag{Name: "ttl", Value: 72 * time.Hour},
	},
	Action: func(cctx *cli.Context) error {
		secret := cctx.String("jwt-secret")
		if secret == "" {
			return errors.New("JWT_SECRET is not set")
		}
		s, err := openSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := permission.Authorize(s.actor.Role, permission.TierModerate); err != nil {
			return err
		}
		token, err := auth.Issue([]byte(secret), s.actor, cctx.Duration("ttl"))
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

var reportsCmd = &cli.Command{
	Name: "reports",
	Subcommands: []*cli.Command{
		reportsListCmd,
		reportDecisionCmd("resolve", models.ReportResolved),
		reportDecisionCmd("dismiss", models.ReportDismissed),
		reportsBulkCmd,
	},
}

var reportsListCmd = &cli.Command{
	Name: "list",
	Flags: withPageFlags(
		&cli.StringFlag{Name: "status"},
		&cli.StringFlag{Name: "target-type"},
	),
	Action: func(cctx *cli.Context) error {
		s, err := openSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()

		page, err := s.svc.ListReports(cctx.Context, s.actor, moderation.ReportQuery{
			Status:     models.ReportStatus(strings.ToUpper(cctx.String("status"))),
			TargetType: models.TargetType(strings.ToUpper(cctx.String("target-type"))),
			Page:       cctx.Int("page"),
			Limit:      limitOrDefault(cctx, config.DefaultReportPageLimit),
		})
		if err != nil {
			return err
		}
		return printJSON(page)
	},
}

func reportDecisionCmd(name string, status models.ReportStatus) *cli.Command {
	return &cli.Command{
		Name:      name,
		ArgsUsage: "<report id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "action"},
			&cli.StringFlag{Name: "reason"},
		},
		Action: func(cctx *cli.Context) error {
			if cctx.NArg() != 1 {
				return errors.Errorf("usage: admin reports %s <report id>", name)
			}
			s, err := openSession(cctx)
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := s.svc.UpdateReport(cctx.Context, s.actor, cctx.Args().First(), moderation.ReportUpdate{
				Status: status,
				Action: cctx.String("action"),
				Reason: cctx.String("reason"),
			})
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}
}

var reportsBulkCmd = &cli.Command{
	Name:      "bulk",
	ArgsUsage: "<report id>...",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "action", Value: models.ActionResolve},
		&cli.StringFlag{Name: "reason"},
	},
	Action: func(cctx *cli.Context) error {
		s, err := openSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()

		res, err := s.svc.BulkUpdateReports(cctx.Context, s.actor, cctx.Args().Slice(),
			strings.ToUpper(cctx.String("action")), cctx.String("reason"))
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var warnCmd = &cli.Command{
	Name:      "warn",
	ArgsUsage: "<user id>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "reason", Required: true},
		&cli.StringFlag{Name: "severity", Value: string(models.SeverityLow)},
		&cli.DurationFlag{Name: "expires-in", Usage: "leave unset for a warning that never expires"},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return errors.New("usage: admin warn <user id> --reason <text>")
		}
		s, err := openSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()

		in := moderation.WarningInput{
			UserID:   cctx.Args().First(),
			Reason:   cctx.String("reason"),
			Severity: models.Severity(strings.ToUpper(cctx.String("severity"))),
		}
		if d := cctx.Duration("expires-in"); d > 0 {
			at := time.Now().Add(d)
			in.ExpiresAt = &at
		}
		warning, err := s.svc.IssueWarning(cctx.Context, s.actor, in)
		if err != nil {
			return err
		}
		return printJSON(warning)
	},
}

var logCmd = &cli.Command{
	Name: "log",
	Flags: withPageFlags(
		&cli.StringFlag{Name: "moderator"},
		&cli.StringFlag{Name: "target-type"},
		&cli.StringFlag{Name: "action"},
	),
	Action: func(cctx *cli.Context) error {
		s, err := openSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()

		page, err := s.svc.QueryLog(cctx.Context, s.actor, moderation.LogQuery{
			ModeratorID: cctx.String("moderator"),
			TargetType:  models.TargetType(strings.ToUpper(cctx.String("target-type"))),
			Action:      strings.ToUpper(cctx.String("action")),
			Page:        cctx.Int("page"),
			Limit:       limitOrDefault(cctx, config.DefaultLogPageLimit),
		})
		if err != nil {
			return err
		}
		return printJSON(page)
	},
}

var dashboardCmd = &cli.Command{
	Name: "dashboard",
	Action: func(cctx *cli.Context) error {
		s, err := openSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()

		snap, err := s.svc.Dashboard(cctx.Context, s.actor)
		if err != nil {
			return err
		}
		return printJSON(snap)
	},
}

func limitOrDefault(cctx *cli.Context, def int) int {
	if n := cctx.Int("limit"); n > 0 {
		return n
	}
	return def
}
