package cmd

import (
	"fmt"

	"github.com/rohmanhakim/lazyload/internal/lazyload"
	"github.com/rohmanhakim/lazyload/internal/metadata"
	"github.com/spf13/cobra"
)

var invalidateOwner string

var invalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Drop the cached fragments of one owner",
	RunE: func(cmd *cobra.Command, args []string) error {
		if invalidateOwner == "" {
			return fmt.Errorf("--owner is required")
		}
		engine, closeStore, err := cacheEngine(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		engine.InvalidateOwner(cmd.Context(), invalidateOwner)
		fmt.Fprintf(cmd.OutOrStdout(), "invalidated %s\n", invalidateOwner)
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Drop every cached fragment table and both snippets",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeStore, err := cacheEngine(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		engine.Deactivate(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "purged")
		return nil
	},
}

func init() {
	invalidateCmd.Flags().StringVar(&invalidateOwner, "owner", "", "owner id whose fragments are dropped")
}

// cacheEngine builds an engine that only touches the store. Store failures
// are logged, never returned.
func cacheEngine(cmd *cobra.Command) (*lazyload.Engine, closer, error) {
	s, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	recorder, err := newRecorder(cmd.ErrOrStderr(), metadata.NewMetrics(nil))
	if err != nil {
		_ = closeStore()
		return nil, nil, err
	}
	return lazyload.NewEngine(recorder, s, nil), closeStore, nil
}

func SetInvalidateOwnerForTest(id string) {
	invalidateOwner = id
}
