package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/simheat/internal/infrastructure/storage/minio"
	"github.com/turtacn/simheat/pkg/errors"
)

// artifactStore is the part of the artifact repository the artifacts
// command needs.
type artifactStore interface {
	Stat(ctx context.Context, objectKey string) (*minio.ObjectMetadata, error)
	List(ctx context.Context, dataset string) ([]*minio.ObjectMetadata, error)
	Delete(ctx context.Context, objectKey string) error
}

// NewArtifactsCmd creates the artifacts command for heatmaps kept in object
// storage.
func NewArtifactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "List or remove stored heatmaps",
	}

	listCmd := &cobra.Command{
		Use:   "list [dataset]",
		Short: "List stored heatmaps, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset := ""
			if len(args) == 1 {
				dataset = args[0]
			}
			return withArtifactStore(cmd, func(ctx context.Context, store artifactStore) error {
				return listArtifacts(ctx, cmd, store, dataset)
			})
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm <object-key>...",
		Short: "Remove stored heatmaps by object key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArtifactStore(cmd, func(ctx context.Context, store artifactStore) error {
				return removeArtifacts(ctx, cmd, store, args)
			})
		},
	}

	cmd.AddCommand(listCmd, rmCmd)
	return cmd
}

// withArtifactStore connects to object storage and runs fn against it.
func withArtifactStore(cmd *cobra.Command, fn func(context.Context, artifactStore) error) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if !cliCtx.Config.Storage.Enabled {
		return errors.New(errors.ErrCodeFeatureDisabled, "object storage is disabled (storage.enabled)")
	}
	ctx, cancel := operationContext(cmd, cliCtx)
	defer cancel()

	rt, err := newRuntime(ctx, cliCtx.Config, cliCtx.Logger, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, rt.Artifacts)
}

// artifactList prints as a table of key, size and modification time.
type artifactList []*minio.ObjectMetadata

func (l artifactList) TableHeaders() []string {
	return []string{"Object Key", "Size", "Last Modified"}
}

func (l artifactList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, m := range l {
		rows = append(rows, []string{
			m.ObjectKey,
			strconv.FormatInt(m.Size, 10),
			m.LastModified.UTC().Format(time.RFC3339),
		})
	}
	return rows
}

func listArtifacts(ctx context.Context, cmd *cobra.Command, store artifactStore, dataset string) error {
	objects, err := store.List(ctx, dataset)
	if err != nil {
		return err
	}
	if objects == nil {
		objects = []*minio.ObjectMetadata{}
	}
	return PrintResult(cmd, artifactList(objects))
}

// removeArtifacts deletes each key in order and stops at the first key that
// does not exist or cannot be removed.
func removeArtifacts(ctx context.Context, cmd *cobra.Command, store artifactStore, keys []string) error {
	for _, key := range keys {
		meta, err := store.Stat(ctx, key)
		if err != nil {
			if errors.IsCode(err, errors.ErrCodeStorageObjectNotFound) {
				return errors.Newf(errors.ErrCodeStorageObjectNotFound, "artifact %q not found", key)
			}
			return err
		}
		if err := store.Delete(ctx, key); err != nil {
			return err
		}
		PrintSuccess(cmd, fmt.Sprintf("removed %s (%d bytes)", key, meta.Size))
	}
	return nil
}

//Personal.AI order the ending
