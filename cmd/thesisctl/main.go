package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/thesis-registry-api/internal/app"
	"github.com/noah-isme/thesis-registry-api/internal/models"
	"github.com/noah-isme/thesis-registry-api/pkg/config"
	"github.com/noah-isme/thesis-registry-api/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "thesisctl",
	Short:         "Thesis registry maintenance CLI",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format: table, json or yaml")
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	rootCmd.AddCommand(migrateCmd(), completeCmd(), eventsCmd(), tokenCmd(), rolesCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func withContainer(ctx context.Context, fn func(context.Context, *app.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	container, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer container.Close()
	container.Start(ctx)
	return fn(ctx, container)
}

// structured reports whether the output flag asks for machine-readable output.
func structured() bool {
	format := viper.GetString("output")
	return format == "json" || format == "yaml"
}

// printStructured writes v as JSON or YAML. YAML goes through the JSON form
// so json tags and raw event payloads render the same in both.
func printStructured(w io.Writer, format string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	switch format {
	case "json":
		var out bytes.Buffer
		if err := json.Indent(&out, raw, "", "  "); err != nil {
			return err
		}
		out.WriteByte('\n')
		_, err = out.WriteTo(w)
		return err
	case "yaml":
		var generic interface{}
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported output format %q", format)
}

func printResult(v interface{}) error {
	return printStructured(os.Stdout, viper.GetString("output"), v)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				applied, err := c.Migrate(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("applied %d migration(s)\n", applied)
				return nil
			})
		},
	}
}

func completeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <thesis-id>...",
		Short: "Mark theses completed after their study attainment was registered",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				completed, err := c.Theses.CompleteFromAttainment(ctx, args)
				if err != nil {
					c.Logger.Error("completion stopped", zap.Int("completed", completed), zap.Error(err))
					return err
				}
				if structured() {
					return printResult(map[string]int{"completed": completed})
				}
				fmt.Printf("completed %d of %d thesis(es)\n", completed, len(args))
				return nil
			})
		},
	}
}

func eventsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "events <thesis-id>",
		Short: "Show the audit trail of a thesis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				events, err := c.Events.ListByThesis(ctx, args[0], limit)
				if err != nil {
					return err
				}
				if structured() {
					return printResult(events)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Time", "Type", "Actor", "Data"})
				for _, e := range events {
					tw.AppendRow(table.Row{e.CreatedAt.Format(time.RFC3339), e.Type, actorLabel(e), summarize(e)})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries")
	return cmd
}

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <email>",
		Short: "Issue an access token for a registered user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				token, expiresAt, err := c.Auth.IssueToken(ctx, args[0])
				if err != nil {
					return err
				}
				if structured() {
					return printResult(map[string]interface{}{"accessToken": token, "expiresAt": expiresAt})
				}
				fmt.Println(token)
				return nil
			})
		},
	}
}

type roleInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

func rolesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Manage cached role memberships",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "invalidate <user-id>...",
		Short: "Drop cached roles after program, department or admin memberships change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				if err := invalidateRoles(ctx, c.Roles, args); err != nil {
					return err
				}
				if structured() {
					return printResult(map[string]int{"invalidated": len(args)})
				}
				fmt.Printf("invalidated cached roles of %d user(s)\n", len(args))
				return nil
			})
		},
	})
	return cmd
}

func invalidateRoles(ctx context.Context, roles roleInvalidator, userIDs []string) error {
	for _, id := range userIDs {
		if err := roles.Invalidate(ctx, id); err != nil {
			return fmt.Errorf("invalidate roles of %s: %w", id, err)
		}
	}
	return nil
}

func actorLabel(e models.EventLogEntry) string {
	if e.UserID == nil {
		return "system"
	}
	return *e.UserID
}

func summarize(e models.EventLogEntry) string {
	if e.Type == models.EventThesisStatusChanged {
		var change models.StatusChangeData
		if err := json.Unmarshal(e.Data, &change); err == nil {
			return fmt.Sprintf("%s -> %s", change.From, change.To)
		}
	}
	raw := strings.TrimSpace(string(e.Data))
	if len(raw) > 80 {
		raw = raw[:77] + "..."
	}
	return raw
}
