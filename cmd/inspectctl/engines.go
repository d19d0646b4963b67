package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func enginesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "engines",
		Short: "Inspect and switch inference engines",
	}

	cmd.AddCommand(enginesListCommand(), enginesActivateCommand(), enginesCheckCommand())
	return cmd
}

func enginesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered engines",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, cancel := commandContext(30 * time.Second)
			defer cancel()

			engines, err := rt.engines.List(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tVERSION\tACTIVE\tARTIFACT\tUPLOADED")
			for _, e := range engines {
				active := ""
				if e.Active {
					active = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.Kind, e.Version, active, e.ArtifactName, e.CreatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}

func enginesActivateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "activate <engine-id>",
		Short: "Make an engine the single active engine",
		Long:  "Running servers drop their cached detector through the redis invalidation channel when redis is enabled.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid engine id %q", args[0])
			}

			rt, err := openRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, cancel := commandContext(30 * time.Second)
			defer cancel()

			engine, err := rt.engines.Activate(ctx, cliActor, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "activated %s (%s %s)\n", engine.ID, engine.Kind, engine.Version)
			return nil
		},
	}
}

func enginesCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the active engine's artifact exists and loads through the inference API",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, cancel := commandContext(rt.cfg.Inference.Timeout + 10*time.Second)
			defer cancel()

			engine, err := rt.engines.CheckActive(ctx)
			if err != nil {
				return fmt.Errorf("active engine check failed: %w", err)
			}
			// the check loaded a copy under this process's own model id
			rt.handle.Invalidate()
			fmt.Fprintf(cmd.OutOrStdout(), "engine %s (%s %s) loaded from %s\n",
				engine.ID, engine.Kind, engine.Version, engine.ArtifactName)
			return nil
		},
	}
}
