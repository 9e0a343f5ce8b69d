package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/viant/taskflow"
	"github.com/viant/taskflow/model/execution"
	"github.com/viant/taskflow/model/identity"
	"github.com/viant/taskflow/service/engine"
	"github.com/viant/taskflow/service/task"
)

// maxDemoSteps bounds looping definitions
const maxDemoSteps = 64

var (
	definitionURL string
	businessKey   string
	userID        string
	tenantID      string
	configURL     string
	variables     map[string]string
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a definition on the reference engine",
	Long: `Starts a request on the in-process reference engine and completes every
task as its assignee until the process finishes, reaches a co-sign step or waits
on candidates. The audit trail is printed at the end.

Example:
taskflow demo --definition purchase-order.yaml --business-key PO-1 --user alice --var approver=bob
`,
	PreRunE: validateDemoFlags,
	RunE:    runDemo,
}

func init() {
	demoCmd.Flags().StringVarP(&definitionURL, "definition", "d", "", "Definition URL (required)")
	demoCmd.Flags().StringVarP(&businessKey, "business-key", "k", "", "Business key of the request (required)")
	demoCmd.Flags().StringVarP(&userID, "user", "u", "", "Requesting user (required)")
	demoCmd.Flags().StringVar(&tenantID, "tenant", "default", "Tenant of the request")
	demoCmd.Flags().StringVarP(&configURL, "config", "c", "", "Service configuration URL (optional)")
	demoCmd.Flags().StringToStringVar(&variables, "var", nil, "Start variables in key=value format")
}

func validateDemoFlags(cmd *cobra.Command, args []string) error {
	if definitionURL == "" {
		return errors.New("required flag --definition not set")
	}
	if businessKey == "" {
		return errors.New("required flag --business-key not set")
	}
	if userID == "" {
		return errors.New("required flag --user not set")
	}
	return nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	config := taskflow.DefaultConfig()
	if configURL != "" {
		var err error
		if config, err = taskflow.LoadConfig(ctx, configURL); err != nil {
			return err
		}
	}
	config.Events.Disabled = true
	srv, err := taskflow.New(ctx, taskflow.WithConfig(config), taskflow.WithLogger(logrus.StandardLogger()))
	if err != nil {
		return err
	}
	defer srv.Close(ctx)

	definition, err := srv.LoadDefinition(ctx, definitionURL)
	if err != nil {
		return err
	}
	if err = srv.Engine().Deploy(definition); err != nil {
		return err
	}
	requester := identity.NewActor(userID, userID, tenantID)
	request := &task.StartRequest{BusinessKey: businessKey, ProcessKey: definition.Key, Variables: map[string]interface{}{}}
	for k, v := range variables {
		request.Variables[k] = v
	}
	started, err := srv.Tasks().Start(ctx, requester, request)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "started %s as %s\n", businessKey, started.ProcessInstanceID)
	if err = advance(ctx, srv, requester, started.ProcessInstanceID, out); err != nil {
		return err
	}
	return printTrail(ctx, srv, started.ProcessInstanceID, out)
}

// advance completes open tasks of the instance as their assignees
func advance(ctx context.Context, srv *taskflow.Service, requester *identity.Actor, instanceID string, out io.Writer) error {
	for step := 0; step < maxDemoSteps; step++ {
		page, err := srv.Tasks().ListAllTodo(ctx, requester, nil)
		if err != nil {
			return err
		}
		var open []*task.Row
		for _, row := range page.Rows {
			if row.ProcessInstanceID == instanceID {
				open = append(open, row)
			}
		}
		if len(open) == 0 {
			return nil
		}
		for _, row := range open {
			switch {
			case row.MultiInstance:
				fmt.Fprintf(out, "stopped at co-sign step %s\n", row.Name)
				return nil
			case row.Assignee == "":
				fmt.Fprintf(out, "stopped at %s: waiting for a candidate to claim it\n", row.Name)
				return nil
			}
		}
		row := open[0]
		actor := identity.NewActor(row.Assignee, row.Assignee, requester.TenantID)
		if err = srv.Tasks().Complete(ctx, actor, &task.CompleteRequest{TaskID: row.ID}); err != nil {
			return fmt.Errorf("failed to complete %s as %s: %w", row.Name, row.Assignee, err)
		}
		fmt.Fprintf(out, "%s completed %s\n", row.Assignee, row.Name)
	}
	return fmt.Errorf("request did not settle after %d steps", maxDemoSteps)
}

func printTrail(ctx context.Context, srv *taskflow.Service, instanceID string, out io.Writer) error {
	var instance *execution.Instance
	var comments []*execution.Comment
	err := srv.Engine().Transact(ctx, func(ctx context.Context, session engine.Session) error {
		instances, err := session.HistoricInstances(ctx, &engine.HistoricInstanceQuery{InstanceID: instanceID})
		if err != nil {
			return err
		}
		if len(instances) == 0 {
			return fmt.Errorf("instance %s not found", instanceID)
		}
		instance = instances[0]
		comments, err = session.Comments(ctx, instanceID)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "status: %s\n", instance.BusinessStatus.Name())
	for _, comment := range comments {
		fmt.Fprintf(out, "%s\t%-8s\t%s\t%s\n", comment.CreatedAt.Format("15:04:05"), comment.Kind, comment.UserID, comment.Message)
	}
	return nil
}
