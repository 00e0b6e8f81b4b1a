package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taskboard/internal/app"
	"taskboard/internal/db"
	"taskboard/internal/migrate"
	"taskboard/internal/server"
	"taskboard/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "taskboard",
	Short: "Taskboard CLI",
	Long: `Taskboard manages tasks and runtime configuration over a workspace store.
Task status (not_urgent, due_soon, overdue) is derived from the due date at
read time. Deletes are soft: rows leave every listing but stay in the store.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("TASKBOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor-id", "local-user", "actor identifier recorded in the event log")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor-id", rootCmd.PersistentFlags().Lookup("actor-id"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(logCmd())
}

func withApp(ctx context.Context, fn func(context.Context, *app.App) error) error {
	a, err := app.New(ctx, app.Options{Workspace: viper.GetString("workspace")})
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if addr == "" {
					addr = fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port)
				}
				handler, err := server.New(server.Config{
					Tasks:          a.Tasks,
					Configurations: a.Configurations,
					Events:         a.Events,
					BasePath:       basePath,
					Locale:         a.Config.Locale,
					Auth:           server.AuthConfig{JWTSecret: firstNonEmpty(os.Getenv("TASKBOARD_JWT_SECRET"), a.Config.Auth.JWTSecret)},
					Logger:         a.Logger,
				})
				if err != nil {
					return err
				}
				srv := &http.Server{Addr: addr, Handler: handler}
				go func() {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					srv.Shutdown(shutdownCtx)
				}()
				fmt.Printf("Serving Taskboard API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n", addr, basePath, basePath)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to config)")
	cmd.Flags().StringVar(&basePath, "base-path", "/v1", "API base path")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			v, err := migrate.Version(conn)
			if err != nil {
				return err
			}
			fmt.Printf("schema at version %d: %s\n", v, db.Path(workspace))
			return nil
		},
	}
}

func taskCmd() *cobra.Command {
	task := &cobra.Command{Use: "task", Short: "Manage tasks"}
	task.AddCommand(taskListCmd())
	task.AddCommand(taskShowCmd())
	task.AddCommand(taskCreateCmd())
	task.AddCommand(taskUpdateCmd())
	task.AddCommand(taskDeleteCmd())
	return task
}

func taskListCmd() *cobra.Command {
	var page, pageSize int
	var getAll bool
	var name, sort string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				params := service.GetTasksParams{Name: name, Sort: sort, GetAll: getAll}
				if !getAll {
					params.Page = &page
					params.PageSize = &pageSize
				}
				result, err := a.Tasks.GetTasks(ctx, params)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(result)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Status", "Due", "Updated"})
				for _, t := range result.Collections {
					due := ""
					if t.DueDate != nil {
						due = t.DueDate.UTC().Format(time.RFC3339)
					}
					tw.AppendRow(table.Row{t.ID, t.Name, t.Status, due, t.UpdatedAt.UTC().Format(time.RFC3339)})
				}
				tw.Render()
				if result.Pagination.TotalCount != nil {
					fmt.Printf("total: %d\n", *result.Pagination.TotalCount)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "items per page")
	cmd.Flags().BoolVar(&getAll, "all", false, "disable paging")
	cmd.Flags().StringVar(&name, "name", "", "name filter (substring)")
	cmd.Flags().StringVar(&sort, "sort", "", "sort pairs, e.g. due_date_asc,created_at_desc")
	return cmd
}

func taskShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				task, err := a.Tasks.GetTaskByID(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(task)
			})
		},
	}
	return cmd
}

func taskCreateCmd() *cobra.Command {
	var name, desc, due string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create task",
		RunE: func(cmd *cobra.Command, args []string) error {
			dueDate, err := parseDue(due)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				task, err := a.Tasks.CreateTask(ctx, service.CreateTaskParams{
					Name:        name,
					Description: desc,
					DueDate:     dueDate,
					ActorID:     viper.GetString("actor-id"),
				})
				if err != nil {
					return err
				}
				return printJSON(task)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "task name (required)")
	cmd.Flags().StringVar(&desc, "description", "", "task description")
	cmd.Flags().StringVar(&due, "due", "", "due date, RFC 3339")
	return cmd
}

func taskUpdateCmd() *cobra.Command {
	var name, desc, due string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			dueDate, err := parseDue(due)
			if err != nil {
				return err
			}
			params := service.UpdateTaskParams{ActorID: viper.GetString("actor-id"), DueDate: dueDate}
			if cmd.Flags().Changed("name") {
				params.Name = &name
			}
			if cmd.Flags().Changed("description") {
				params.Description = &desc
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				task, err := a.Tasks.UpdateTaskByID(ctx, id, params)
				if err != nil {
					return err
				}
				return printJSON(task)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new task name")
	cmd.Flags().StringVar(&desc, "description", "", "new description")
	cmd.Flags().StringVar(&due, "due", "", "new due date, RFC 3339")
	return cmd
}

func taskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete task (soft)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				task, err := a.Tasks.DeleteTaskByID(ctx, id, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				fmt.Printf("deleted task %d (%s)\n", task.ID, task.Name)
				return nil
			})
		},
	}
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{Use: "config", Short: "Manage runtime configurations"}
	cfg.AddCommand(configListCmd())
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configSetCmd())
	return cfg
}

func configListCmd() *cobra.Command {
	var includeHidden bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configurations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				items, err := a.Configurations.GetConfigurations(ctx, includeHidden)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Value", "Editable"})
				for _, c := range items {
					tw.AppendRow(table.Row{c.ID, c.Name, c.Value, c.IsEditable})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&includeHidden, "hidden", false, "include hidden entries")
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid configuration id %q", args[0])
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				cfg, err := a.Configurations.GetConfigurationByID(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(cfg)
			})
		},
	}
}

func configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <value>",
		Short: "Set configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid configuration id %q", args[0])
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				cfg, err := a.Configurations.UpdateConfigurationValue(ctx, id, args[1], viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printJSON(cfg)
			})
		},
	}
}

func logCmd() *cobra.Command {
	log := &cobra.Command{Use: "log", Short: "Event log"}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				items, err := a.Events.Tail(ctx, n)
				if err != nil {
					return err
				}
				return printJSON(items)
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	return cmd
}

func parseDue(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q: expected RFC 3339", s)
	}
	return &t, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
