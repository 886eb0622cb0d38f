package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/simheat/pkg/errors"
)

// NewCacheCmd creates the cache command. Its purge subcommand drops every
// parsed report held in Redis.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the parsed-report cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Drop every cached report",
		Args:  cobra.NoArgs,
		RunE:  runCachePurge,
	})
	return cmd
}

func runCachePurge(cmd *cobra.Command, _ []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if !cliCtx.Config.Cache.Enabled {
		return errors.New(errors.ErrCodeFeatureDisabled, "the report cache is disabled (cache.enabled)")
	}
	ctx, cancel := operationContext(cmd, cliCtx)
	defer cancel()

	rt, err := newRuntime(ctx, cliCtx.Config, cliCtx.Logger, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	n, err := rt.Reports.Purge(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache purge failed")
	}
	if cliCtx.OutputFormat == "json" {
		return printJSON(cmd, map[string]int64{"purged": n})
	}
	PrintSuccess(cmd, fmt.Sprintf("purged %d cached report(s)", n))
	return nil
}

//Personal.AI order the ending
