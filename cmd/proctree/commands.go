package main

import (
	"context"
	"fmt"

	"proctree/config"
	"proctree/process_tree"
	"proctree/render"

	"github.com/spf13/cobra"
)

func (a *app) treeCmd() *cobra.Command {
	var (
		includeServices bool
		validate        bool
		selectors       []string
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the process forest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("include-services") {
				a.cfg.ExcludeServices = !includeServices
			}

			return a.withFetcher(cmd, func(ctx context.Context, f *process_tree.Fetcher) error {
				roots, err := f.GetProcessesTreeStructure(ctx, a.cfg.Attributes, a.cfg.ExcludeServices)
				if err != nil {
					return err
				}

				if validate {
					if err := process_tree.Validate(roots); err != nil {
						return fmt.Errorf("invalid forest: %w", err)
					}
					a.log.Debugln(fmt.Sprintf("forest of %d nodes is valid", process_tree.Count(roots)))
				}

				if len(selectors) > 0 {
					matchers := make([]process_tree.NodeMatcher, 0, len(selectors))
					for _, selector := range selectors {
						matchers = append(matchers, process_tree.MatchNameOrPID(selector))
					}
					roots = process_tree.Subtrees(roots, process_tree.AnyMatch(matchers...))
				}

				w := cmd.OutOrStdout()
				switch a.cfg.Output {
				case config.OutputJSON:
					return render.JSON(w, render.NewTreeDocument(roots, a.cfg.Attributes))
				case config.OutputYAML:
					return render.YAML(w, render.NewTreeDocument(roots, a.cfg.Attributes))
				default:
					return render.Tree(w, roots, a.cfg.Attributes, render.Options{Color: a.colors(cmd)})
				}
			})
		},
	}

	flags := cmd.Flags()
	flags.StringSlice("attributes", nil, "attributes to show for every node, e.g. Name,CommandLine")
	flags.BoolVar(&includeServices, "include-services", false, "add service trees")
	flags.StringSlice("exclude-parent", nil, "process names that never receive children (default explorer)")
	flags.IntSlice("exclude-parent-id", nil, "pids that never receive children")
	flags.BoolVar(&validate, "validate", false, "check the forest before printing it")
	flags.StringSliceVar(&selectors, "root", nil, "only print the subtrees of these process names or pids")

	a.bind(flags, config.KeyAttributes, "attributes")
	a.bind(flags, config.KeyExcludeParentNames, "exclude-parent")
	a.bind(flags, config.KeyExcludeParentIDs, "exclude-parent-id")

	return cmd
}

func (a *app) processesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "processes",
		Short: "List the running processes that are not services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withFetcher(cmd, func(ctx context.Context, f *process_tree.Fetcher) error {
				processes, err := f.GetProcesses(ctx)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				switch a.cfg.Output {
				case config.OutputJSON:
					return render.JSON(w, processes)
				case config.OutputYAML:
					return render.YAML(w, processes)
				default:
					return render.Processes(w, processes, render.Options{Color: a.colors(cmd)})
				}
			})
		},
	}
}

func (a *app) servicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List the running services and their processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withFetcher(cmd, func(ctx context.Context, f *process_tree.Fetcher) error {
				entries, err := f.GetServiceEntries(ctx)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				switch a.cfg.Output {
				case config.OutputJSON:
					return render.JSON(w, entries)
				case config.OutputYAML:
					return render.YAML(w, entries)
				default:
					return render.Services(w, entries, render.Options{Color: a.colors(cmd)})
				}
			})
		},
	}
}
